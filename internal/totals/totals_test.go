package totals_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/totals"
)

func intPtr(n int) *int { return &n }

func price(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestClamp(t *testing.T) {
	cases := []struct {
		name  string
		g     int
		total int
		want  int
	}{
		{"within range", 2, 5, 2},
		{"negative clamps to zero", -3, 5, 0},
		{"above total clamps to total", 9, 5, 5},
		{"equal to total", 5, 5, 5},
		{"zero total leaves value", 9, 0, 9},
		{"zero total leaves negative", -1, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, totals.Clamp(tc.g, tc.total))
		})
	}
}

func TestClamp_Property(t *testing.T) {
	for g := -5; g <= 15; g++ {
		for total := 0; total <= 10; total++ {
			got := totals.Clamp(g, total)
			if total > 0 {
				assert.Equal(t, min(max(g, 0), total), got)
			} else {
				assert.Equal(t, g, got)
			}
		}
	}
}

func TestEffectiveGuests_NilUsesTourTotal(t *testing.T) {
	assert.Equal(t, 3, totals.EffectiveGuests(nil, 3))
	assert.Equal(t, 2, totals.EffectiveGuests(intPtr(2), 3))
	assert.Equal(t, 3, totals.EffectiveGuests(intPtr(7), 3))
}

func TestLineTotal_DefaultsToWholeParty(t *testing.T) {
	item := domain.PricedItem{Name: "Bà Nà Hills", Price: price(100000)}

	got := totals.LineTotal(item, 3)

	assert.True(t, got.Equal(price(300000)), "got %s", got)
}

func TestCompute(t *testing.T) {
	tour := domain.Tour{
		Adults:   2,
		Children: 1,
		Destinations: []domain.PricedItem{
			{Name: "Bà Nà Hills", Price: price(100000)},
			{Name: "Hội An", Price: price(50000), Guests: intPtr(2)},
		},
		Expenses: []domain.PricedItem{
			{Name: "Parking", Price: price(20000), Guests: intPtr(10)},
		},
		Meals: []domain.PricedItem{
			{Name: "Lunch", Price: price(150000), Guests: intPtr(-1)},
		},
		Allowances: []domain.Allowance{
			{Name: "CTP", Price: price(200000), Quantity: 3},
		},
		Shoppings: []domain.Shopping{
			{Name: "Silk", Amount: price(1000000), Commission: price(100000)},
		},
	}

	s := totals.Compute(tour)

	assert.True(t, s.Destinations.Equal(price(400000)), "destinations %s", s.Destinations)
	assert.True(t, s.Expenses.Equal(price(60000)), "expenses %s", s.Expenses)
	assert.True(t, s.Meals.Equal(decimal.Zero), "meals %s", s.Meals)
	assert.True(t, s.Allowances.Equal(price(600000)), "allowances %s", s.Allowances)
	assert.True(t, s.Shopping.Equal(price(1000000)))
	assert.True(t, s.Commission.Equal(price(100000)))
	assert.True(t, s.Grand.Equal(s.Destinations.Add(s.Expenses).Add(s.Meals)))
	assert.True(t, s.Grand.Equal(price(460000)), "grand %s", s.Grand)
}

func TestCompute_EmptyTour(t *testing.T) {
	s := totals.Compute(domain.Tour{})

	assert.True(t, s.Grand.IsZero())
	assert.True(t, s.Allowances.IsZero())
}

func TestCompute_DecimalPrices(t *testing.T) {
	tour := domain.Tour{
		Adults: 2,
		Meals:  []domain.PricedItem{{Name: "Coffee", Price: decimal.RequireFromString("12.50")}},
	}

	s := totals.Compute(tour)

	assert.Equal(t, "25", s.Meals.String())
}
