package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/export"
	"github.com/tourdesk/tourdesk/internal/repo"
	"github.com/tourdesk/tourdesk/internal/totals"
	"github.com/tourdesk/tourdesk/migrations"
)

// Export categories, one per line-item collection.
const (
	CategoryDestination = "destination"
	CategoryExpense     = "expense"
	CategoryMeal        = "meal"
	CategoryAllowance   = "allowance"
	CategoryShopping    = "shopping"
)

// ExportService assembles exports of tours and master data.
type ExportService struct {
	tours   repo.TourRepo
	masters repo.MasterRepo
	now     func() time.Time
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(tours repo.TourRepo, masters repo.MasterRepo) *ExportService {
	return &ExportService{tours: tours, masters: masters, now: time.Now}
}

// Rows returns one ExportRow per line item across all tours.
// Tours with no line items contribute one row with an empty Category.
func (s *ExportService) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	tours, err := s.tours.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Rows: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, t := range tours {
		rows = append(rows, tourRows(t)...)
	}
	return rows, nil
}

// TourXLSX writes the spreadsheet export of one tour to w and returns the
// tour so callers can name the file.
func (s *ExportService) TourXLSX(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.ExportService.TourXLSX: %w", err)
	}
	if err := export.WriteXLSX(w, t, totals.Compute(t)); err != nil {
		return domain.Tour{}, fmt.Errorf("service.ExportService.TourXLSX: %w", err)
	}
	return t, nil
}

// TourText writes the plain-text summary of one tour to w.
func (s *ExportService) TourText(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error) {
	t, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("service.ExportService.TourText: %w", err)
	}
	if err := export.WriteText(w, t, totals.Compute(t)); err != nil {
		return domain.Tour{}, fmt.Errorf("service.ExportService.TourText: %w", err)
	}
	return t, nil
}

// SQLDump writes the schema and every master entity and tour as a SQL script.
func (s *ExportService) SQLDump(ctx context.Context, w io.Writer) error {
	schema, err := migrations.Schema()
	if err != nil {
		return fmt.Errorf("service.ExportService.SQLDump: %w", err)
	}

	var masters []domain.MasterEntity
	for _, k := range domain.Kinds {
		list, err := s.masters.ListAll(ctx, k, false)
		if err != nil {
			return fmt.Errorf("service.ExportService.SQLDump: %s: %w", k, err)
		}
		masters = append(masters, list...)
	}

	tours, err := s.tours.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("service.ExportService.SQLDump: %w", err)
	}

	if err := export.WriteSQLDump(w, schema, s.now(), masters, tours); err != nil {
		return fmt.Errorf("service.ExportService.SQLDump: %w", err)
	}
	return nil
}

// tourRows flattens one tour into export rows.
func tourRows(t domain.Tour) []domain.ExportRow {
	t.Normalize()
	base := domain.ExportRow{
		TourID:      t.ID.String(),
		TourCode:    t.Code,
		StartDate:   t.StartDate.Format("2006-01-02"),
		TotalGuests: t.TotalGuests,
		Company:     t.CompanyRef.NameAtBooking,
		Guide:       t.GuideRef.NameAtBooking,
		Nationality: t.NationalityRef.NameAtBooking,
	}
	if t.EndDate != nil {
		base.EndDate = t.EndDate.Format("2006-01-02")
	}

	var rows []domain.ExportRow
	line := func(category, name string, date *time.Time, price decimal.Decimal, qty int) {
		r := base
		r.Category = category
		r.ItemName = name
		r.ItemDate = date
		r.Price = price.String()
		r.Quantity = qty
		r.Total = price.Mul(decimal.NewFromInt(int64(qty))).String()
		rows = append(rows, r)
	}

	for _, tab := range []struct {
		category string
		items    []domain.PricedItem
	}{
		{CategoryDestination, t.Destinations},
		{CategoryExpense, t.Expenses},
		{CategoryMeal, t.Meals},
	} {
		for _, it := range tab.items {
			line(tab.category, it.Name, it.Date, it.Price, totals.EffectiveGuests(it.Guests, t.TotalGuests))
		}
	}
	for _, a := range t.Allowances {
		line(CategoryAllowance, a.Name, a.Date, a.Price, a.Quantity)
	}
	for _, sh := range t.Shoppings {
		line(CategoryShopping, sh.Name, sh.Date, sh.Amount, 1)
	}

	if len(rows) == 0 {
		rows = append(rows, base)
	}
	return rows
}
