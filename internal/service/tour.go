// Package service contains the business logic for the tourdesk API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/repo"
	"github.com/tourdesk/tourdesk/internal/totals"
)

// TourService implements business logic for Tour operations.
type TourService struct {
	repo repo.TourRepo
}

// NewTourService constructs a TourService backed by the provided TourRepo.
func NewTourService(r repo.TourRepo) *TourService {
	return &TourService{repo: r}
}

// Create validates and persists a new tour. Guest counts on line items are
// clamped to the tour's party size before saving.
func (s *TourService) Create(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	prepareTour(&tour)
	if err := validateTour(tour); err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, tour)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Create: %w", err)
	}
	return result, nil
}

// Validate applies the normalization and rules of Create to a copy of tour
// without saving it.
func (s *TourService) Validate(tour domain.Tour) error {
	tour.Destinations = slices.Clone(tour.Destinations)
	tour.Expenses = slices.Clone(tour.Expenses)
	tour.Meals = slices.Clone(tour.Meals)
	prepareTour(&tour)
	return validateTour(tour)
}

// GetByID returns a single tour by ID.
func (s *TourService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of tours and the total match count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TourService) ListPaged(ctx context.Context, filter domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	tours, total, err := s.repo.ListPaged(ctx, filter, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TourService.ListPaged: %w", err)
	}
	if tours == nil {
		tours = []domain.Tour{}
	}
	return tours, total, nil
}

// ListAll returns every tour.
func (s *TourService) ListAll(ctx context.Context) ([]domain.Tour, error) {
	tours, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TourService.ListAll: %w", err)
	}
	if tours == nil {
		tours = []domain.Tour{}
	}
	return tours, nil
}

// Update validates and overwrites an existing tour.
func (s *TourService) Update(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	prepareTour(&tour)
	if err := validateTour(tour); err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Update: %w", err)
	}
	result, err := s.repo.Update(ctx, tour)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Update: %w", err)
	}
	return result, nil
}

// Patch applies a partial update: the stored tour is loaded, the set fields
// of p are copied over, and the result is validated and saved.
func (s *TourService) Patch(ctx context.Context, id uuid.UUID, p domain.TourPatch) (domain.Tour, error) {
	tour, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Patch: %w", err)
	}
	p.Apply(&tour)
	prepareTour(&tour)
	if err := validateTour(tour); err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Patch: %w", err)
	}
	result, err := s.repo.Update(ctx, tour)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.TourService.Patch: %w", err)
	}
	return result, nil
}

// Delete removes a tour by ID.
func (s *TourService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TourService.Delete: %w", err)
	}
	return nil
}

// Totals loads a tour and computes its per-tab and grand totals.
func (s *TourService) Totals(ctx context.Context, id uuid.UUID) (domain.Tour, totals.Summary, error) {
	tour, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tour{}, totals.Summary{}, fmt.Errorf("service.TourService.Totals: %w", err)
	}
	return tour, totals.Compute(tour), nil
}

// prepareTour trims text fields, recomputes TotalGuests and clamps every
// per-row guest count into [0, TotalGuests].
func prepareTour(t *domain.Tour) {
	t.Code = strings.TrimSpace(t.Code)
	t.ClientName = strings.TrimSpace(t.ClientName)
	t.Normalize()
	for _, items := range [][]domain.PricedItem{t.Destinations, t.Expenses, t.Meals} {
		for i := range items {
			if items[i].Guests != nil {
				g := totals.Clamp(*items[i].Guests, t.TotalGuests)
				items[i].Guests = &g
			}
		}
	}
}

// validateTour enforces business rules common to Create, Update and Patch.
//   - Code must be non-empty and StartDate set.
//   - EndDate, if set, must not be before StartDate.
//   - Guest counts, prices and quantities must not be negative.
func validateTour(t domain.Tour) error {
	if t.Code == "" {
		return fmt.Errorf("%w: code is required", domain.ErrValidation)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if t.Adults < 0 || t.Children < 0 {
		return fmt.Errorf("%w: guest counts must not be negative", domain.ErrValidation)
	}
	for _, tab := range []struct {
		name  string
		items []domain.PricedItem
	}{
		{"destinations", t.Destinations},
		{"expenses", t.Expenses},
		{"meals", t.Meals},
	} {
		for i, it := range tab.items {
			if strings.TrimSpace(it.Name) == "" {
				return fmt.Errorf("%w: %s[%d]: name is required", domain.ErrValidation, tab.name, i)
			}
			if it.Price.IsNegative() {
				return fmt.Errorf("%w: %s[%d]: price must not be negative", domain.ErrValidation, tab.name, i)
			}
		}
	}
	for i, a := range t.Allowances {
		if a.Price.IsNegative() || a.Quantity < 0 {
			return fmt.Errorf("%w: allowances[%d]: price and quantity must not be negative", domain.ErrValidation, i)
		}
	}
	for i, sh := range t.Shoppings {
		if sh.Amount.IsNegative() || sh.Commission.IsNegative() {
			return fmt.Errorf("%w: shoppings[%d]: amounts must not be negative", domain.ErrValidation, i)
		}
	}
	return nil
}
