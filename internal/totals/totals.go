// Package totals computes the derived money figures of a tour: one total per
// line-item tab and the grand total shown on the tour summary. Everything here
// is a pure function of the tour; nothing is cached.
package totals

import (
	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// Summary holds the per-tab totals of a tour.
// Grand covers destinations, expenses and meals only; allowances and shopping
// are reported separately.
type Summary struct {
	Destinations decimal.Decimal `json:"destinations"`
	Expenses     decimal.Decimal `json:"expenses"`
	Meals        decimal.Decimal `json:"meals"`
	Allowances   decimal.Decimal `json:"allowances"`
	Shopping     decimal.Decimal `json:"shopping"`
	Commission   decimal.Decimal `json:"commission"`
	Grand        decimal.Decimal `json:"grand"`
}

// Clamp bounds g into [0, total] when total is positive. With no guests on
// the tour there is nothing to clamp against and g is returned unchanged.
func Clamp(g, total int) int {
	if total <= 0 {
		return g
	}
	return min(max(g, 0), total)
}

// EffectiveGuests is the guest count a line is billed for: the row's own
// count when set, otherwise the whole party, clamped by Clamp.
func EffectiveGuests(guests *int, total int) int {
	g := total
	if guests != nil {
		g = *guests
	}
	return Clamp(g, total)
}

// LineTotal is price × effective guests for a single row.
func LineTotal(item domain.PricedItem, totalGuests int) decimal.Decimal {
	n := EffectiveGuests(item.Guests, totalGuests)
	return item.Price.Mul(decimal.NewFromInt(int64(n)))
}

// ItemsTotal sums LineTotal over items.
func ItemsTotal(items []domain.PricedItem, totalGuests int) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(LineTotal(it, totalGuests))
	}
	return sum
}

// AllowancesTotal sums price × quantity. Guest counts play no part.
func AllowancesTotal(items []domain.Allowance) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range items {
		sum = sum.Add(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}
	return sum
}

// ShoppingTotals returns the summed sales amount and commission.
func ShoppingTotals(items []domain.Shopping) (amount, commission decimal.Decimal) {
	amount, commission = decimal.Zero, decimal.Zero
	for _, s := range items {
		amount = amount.Add(s.Amount)
		commission = commission.Add(s.Commission)
	}
	return amount, commission
}

// Compute builds the Summary for t. TotalGuests is taken as Adults+Children so
// a tour that was never normalized still totals correctly.
func Compute(t domain.Tour) Summary {
	guests := t.Adults + t.Children
	s := Summary{
		Destinations: ItemsTotal(t.Destinations, guests),
		Expenses:     ItemsTotal(t.Expenses, guests),
		Meals:        ItemsTotal(t.Meals, guests),
		Allowances:   AllowancesTotal(t.Allowances),
	}
	s.Shopping, s.Commission = ShoppingTotals(t.Shoppings)
	s.Grand = s.Destinations.Add(s.Expenses).Add(s.Meals)
	return s
}
