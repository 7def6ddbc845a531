package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func validTour() domain.Tour {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	return domain.Tour{
		Code:       "VA-0301",
		ClientName: "Nguyễn Văn A",
		StartDate:  start,
		EndDate:    &end,
		Adults:     4,
		Children:   1,
	}
}

func intPtr(n int) *int { return &n }

func echoTourRepo() *mockTourRepo {
	// Echoes whatever it receives; for tests that only care about validation.
	return &mockTourRepo{
		create: func(_ context.Context, t domain.Tour) (domain.Tour, error) { return t, nil },
		update: func(_ context.Context, t domain.Tour) (domain.Tour, error) { return t, nil },
	}
}

// ---- Create ----------------------------------------------------------------

func TestTourService_Create_Valid(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	got, err := svc.Create(context.Background(), validTour())

	require.NoError(t, err)
	assert.Equal(t, "VA-0301", got.Code)
	assert.Equal(t, 5, got.TotalGuests)
	assert.NotNil(t, got.Destinations)
}

func TestTourService_Create_MissingCode(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour()
	tour.Code = "  "

	_, err := svc.Create(context.Background(), tour)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTourService_Create_MissingStartDate(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour()
	tour.StartDate = time.Time{}
	tour.EndDate = nil

	_, err := svc.Create(context.Background(), tour)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTourService_Create_EndDateBeforeStartDate(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour()
	bad := tour.StartDate.AddDate(0, 0, -1)
	tour.EndDate = &bad

	_, err := svc.Create(context.Background(), tour)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTourService_Create_SameDayTour(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour()
	same := tour.StartDate
	tour.EndDate = &same

	_, err := svc.Create(context.Background(), tour)

	assert.NoError(t, err)
}

func TestTourService_Create_NegativeCounts(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour()
	tour.Children = -1

	_, err := svc.Create(context.Background(), tour)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTourService_Create_LineItemRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Tour)
	}{
		{"blank destination name", func(t *domain.Tour) {
			t.Destinations = []domain.PricedItem{{Name: " ", Price: decimal.NewFromInt(1)}}
		}},
		{"negative meal price", func(t *domain.Tour) {
			t.Meals = []domain.PricedItem{{Name: "Lunch", Price: decimal.NewFromInt(-1)}}
		}},
		{"negative allowance quantity", func(t *domain.Tour) {
			t.Allowances = []domain.Allowance{{Name: "Per diem", Price: decimal.NewFromInt(1), Quantity: -2}}
		}},
		{"negative commission", func(t *domain.Tour) {
			t.Shoppings = []domain.Shopping{{Name: "Pearls", Commission: decimal.NewFromInt(-5)}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewTourService(echoTourRepo())
			tour := validTour()
			tt.mutate(&tour)

			_, err := svc.Create(context.Background(), tour)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTourService_Create_ClampsLineGuests(t *testing.T) {
	svc := service.NewTourService(echoTourRepo())

	tour := validTour() // 5 guests
	tour.Destinations = []domain.PricedItem{
		{Name: "Ba Na Hills", Price: decimal.NewFromInt(100), Guests: intPtr(9)},
		{Name: "Marble Mountains", Price: decimal.NewFromInt(50), Guests: intPtr(-3)},
		{Name: "Hoi An", Price: decimal.NewFromInt(20)},
	}

	got, err := svc.Create(context.Background(), tour)

	require.NoError(t, err)
	require.Len(t, got.Destinations, 3)
	assert.Equal(t, 5, *got.Destinations[0].Guests)
	assert.Equal(t, 0, *got.Destinations[1].Guests)
	assert.Nil(t, got.Destinations[2].Guests)
}

func TestTourService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockTourRepo{
		create: func(_ context.Context, _ domain.Tour) (domain.Tour, error) {
			return domain.Tour{}, repoErr
		},
	}
	svc := service.NewTourService(r)

	_, err := svc.Create(context.Background(), validTour())

	assert.ErrorIs(t, err, repoErr)
}

// ---- GetByID / List --------------------------------------------------------

func TestTourService_GetByID_NotFound(t *testing.T) {
	r := &mockTourRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Tour, error) {
			return domain.Tour{}, domain.ErrNotFound
		},
	}
	svc := service.NewTourService(r)

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourService_ListPaged_TrimsQueryAndReturnsNonNil(t *testing.T) {
	var gotQuery string
	r := &mockTourRepo{
		listPaged: func(_ context.Context, f domain.TourFilter, _ domain.PaginationParams) ([]domain.Tour, int64, error) {
			gotQuery = f.Query
			return nil, 0, nil
		},
	}
	svc := service.NewTourService(r)

	tours, total, err := svc.ListPaged(context.Background(), domain.TourFilter{Query: "  VA "}, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, "VA", gotQuery)
	assert.NotNil(t, tours)
	assert.Zero(t, total)
}

// ---- Patch -----------------------------------------------------------------

func TestTourService_Patch_AppliesOnlySetFields(t *testing.T) {
	stored := validTour()
	stored.ID = uuid.New()
	stored.DriverName = "Anh Hùng"
	r := echoTourRepo()
	r.getByID = func(_ context.Context, _ uuid.UUID) (domain.Tour, error) { return stored, nil }
	svc := service.NewTourService(r)

	adults := 10
	got, err := svc.Patch(context.Background(), stored.ID, domain.TourPatch{Adults: &adults})

	require.NoError(t, err)
	assert.Equal(t, 10, got.Adults)
	assert.Equal(t, 11, got.TotalGuests)
	assert.Equal(t, "Anh Hùng", got.DriverName)
	assert.Equal(t, stored.Code, got.Code)
}

func TestTourService_Patch_ValidatesMergedResult(t *testing.T) {
	stored := validTour()
	r := echoTourRepo()
	r.getByID = func(_ context.Context, _ uuid.UUID) (domain.Tour, error) { return stored, nil }
	updated := false
	r.update = func(_ context.Context, t domain.Tour) (domain.Tour, error) {
		updated = true
		return t, nil
	}
	svc := service.NewTourService(r)

	start := stored.EndDate.AddDate(0, 0, 1) // start after the stored end date
	_, err := svc.Patch(context.Background(), uuid.New(), domain.TourPatch{StartDate: &start})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, updated, "invalid patch must not reach the repo")
}

func TestTourService_Patch_NotFound(t *testing.T) {
	r := &mockTourRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Tour, error) {
			return domain.Tour{}, domain.ErrNotFound
		},
	}
	svc := service.NewTourService(r)

	_, err := svc.Patch(context.Background(), uuid.New(), domain.TourPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete / Totals -------------------------------------------------------

func TestTourService_Delete_PropagatesNotFound(t *testing.T) {
	r := &mockTourRepo{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := service.NewTourService(r)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourService_Totals(t *testing.T) {
	tour := validTour() // 5 guests
	tour.Destinations = []domain.PricedItem{{Name: "Ba Na Hills", Price: decimal.NewFromInt(100)}}
	tour.Meals = []domain.PricedItem{{Name: "Dinner", Price: decimal.NewFromInt(30), Guests: intPtr(2)}}
	r := &mockTourRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Tour, error) { return tour, nil },
	}
	svc := service.NewTourService(r)

	_, sum, err := svc.Totals(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(sum.Destinations))
	assert.True(t, decimal.NewFromInt(60).Equal(sum.Meals))
	assert.True(t, decimal.NewFromInt(560).Equal(sum.Grand))
}
