// Package repo contains all database access logic for the tourdesk API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TourRepo defines the persistence operations for Tours.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TourRepo interface {
	// Create inserts a new tour and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, tour domain.Tour) (domain.Tour, error)

	// GetByID retrieves a single tour by its UUID primary key.
	// Returns domain.ErrNotFound if no tour with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error)

	// ListPaged returns one page of tours matching filter, ordered by
	// start_date descending, plus the total number of matches.
	ListPaged(ctx context.Context, filter domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error)

	// ListAll returns every tour ordered by start_date descending.
	ListAll(ctx context.Context) ([]domain.Tour, error)

	// Update overwrites every mutable field of an existing tour and returns
	// the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, tour domain.Tour) (domain.Tour, error)

	// Delete removes a tour by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTourRepo is the Postgres implementation of TourRepo.
type pgTourRepo struct {
	db db
}

// NewTourRepo constructs a TourRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTourRepo(db db) TourRepo {
	return &pgTourRepo{db: db}
}

const tourColumns = `id, code, client_name, start_date, end_date, adults, children, total_guests,
	company_ref, guide_ref, nationality_ref, driver_name, notes,
	destinations, expenses, meals, allowances, shoppings, diaries,
	created_at, updated_at`

func tourArgs(t domain.Tour) pgx.NamedArgs {
	t.Normalize()
	return pgx.NamedArgs{
		"id":              t.ID,
		"code":            t.Code,
		"client_name":     t.ClientName,
		"start_date":      pgtype.Date{Time: t.StartDate, Valid: true},
		"end_date":        endDate(t),
		"adults":          t.Adults,
		"children":        t.Children,
		"total_guests":    t.TotalGuests,
		"company_ref":     t.CompanyRef,
		"guide_ref":       t.GuideRef,
		"nationality_ref": t.NationalityRef,
		"driver_name":     t.DriverName,
		"notes":           t.Notes,
		"destinations":    t.Destinations,
		"expenses":        t.Expenses,
		"meals":           t.Meals,
		"allowances":      t.Allowances,
		"shoppings":       t.Shoppings,
		"diaries":         t.Diaries,
	}
}

func endDate(t domain.Tour) pgtype.Date {
	if t.EndDate == nil {
		return pgtype.Date{} // NULL
	}
	return pgtype.Date{Time: *t.EndDate, Valid: true}
}

// Create inserts a new tour row and returns the full persisted record.
func (r *pgTourRepo) Create(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	q := `
		INSERT INTO tours (code, client_name, start_date, end_date, adults, children, total_guests,
			company_ref, guide_ref, nationality_ref, driver_name, notes,
			destinations, expenses, meals, allowances, shoppings, diaries)
		VALUES (@code, @client_name, @start_date, @end_date, @adults, @children, @total_guests,
			@company_ref, @guide_ref, @nationality_ref, @driver_name, @notes,
			@destinations, @expenses, @meals, @allowances, @shoppings, @diaries)
		RETURNING ` + tourColumns

	row := r.db.QueryRow(ctx, q, tourArgs(tour))
	result, err := scanTour(row)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("repo.TourRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a tour by primary key.
func (r *pgTourRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	q := `SELECT ` + tourColumns + ` FROM tours WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTour(row)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("repo.TourRepo.GetByID: %w", err)
	}
	return result, nil
}

// tourSearch matches @q as a literal, case-insensitive substring of code or
// client name. '%' and '_' in @q match only themselves.
const tourSearch = `@q::text = ''
		OR strpos(lower(code), lower(@q::text)) > 0
		OR strpos(lower(client_name), lower(@q::text)) > 0`

// ListPaged returns one page of tours whose code or client name contains
// filter.Query (case-insensitive), most recent first.
func (r *pgTourRepo) ListPaged(ctx context.Context, filter domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error) {
	q := `
		SELECT ` + tourColumns + `, count(*) OVER () AS total
		FROM tours
		WHERE ` + tourSearch + `
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"q":      filter.Query,
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TourRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		tours []domain.Tour
		total int64
	)
	for rows.Next() {
		t, err := scanTour(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TourRepo.ListPaged: scan: %w", err)
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TourRepo.ListPaged: rows: %w", err)
	}
	if len(tours) == 0 && p.Offset() > 0 {
		// past the last page the window count is unavailable
		if err := r.db.QueryRow(ctx, `SELECT count(*) FROM tours WHERE `+tourSearch,
			pgx.NamedArgs{"q": filter.Query}).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.TourRepo.ListPaged: count: %w", err)
		}
	}
	return tours, total, nil
}

// ListAll returns every tour, most recent first.
func (r *pgTourRepo) ListAll(ctx context.Context) ([]domain.Tour, error) {
	q := `SELECT ` + tourColumns + ` FROM tours ORDER BY start_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TourRepo.ListAll: %w", err)
	}
	defer rows.Close()

	var tours []domain.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TourRepo.ListAll: scan: %w", err)
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TourRepo.ListAll: rows: %w", err)
	}
	return tours, nil
}

// Update overwrites the mutable fields of a tour and returns the updated record.
func (r *pgTourRepo) Update(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	q := `
		UPDATE tours
		SET code            = @code,
		    client_name     = @client_name,
		    start_date      = @start_date,
		    end_date        = @end_date,
		    adults          = @adults,
		    children        = @children,
		    total_guests    = @total_guests,
		    company_ref     = @company_ref,
		    guide_ref       = @guide_ref,
		    nationality_ref = @nationality_ref,
		    driver_name     = @driver_name,
		    notes           = @notes,
		    destinations    = @destinations,
		    expenses        = @expenses,
		    meals           = @meals,
		    allowances      = @allowances,
		    shoppings       = @shoppings,
		    diaries         = @diaries,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + tourColumns

	row := r.db.QueryRow(ctx, q, tourArgs(tour))
	result, err := scanTour(row)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("repo.TourRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a tour by primary key.
func (r *pgTourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tours WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TourRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TourRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTour maps a single database row into a domain.Tour. extra receives any
// columns selected after the tour columns (e.g. a window count).
func scanTour(s scanner, extra ...any) (domain.Tour, error) {
	var (
		t       domain.Tour
		id      pgtype.UUID
		start   pgtype.Date
		endDate pgtype.Date
	)

	dest := []any{
		&id, &t.Code, &t.ClientName, &start, &endDate, &t.Adults, &t.Children, &t.TotalGuests,
		&t.CompanyRef, &t.GuideRef, &t.NationalityRef, &t.DriverName, &t.Notes,
		&t.Destinations, &t.Expenses, &t.Meals, &t.Allowances, &t.Shoppings, &t.Diaries,
		&t.CreatedAt, &t.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tour{}, domain.ErrNotFound
		}
		return domain.Tour{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = start.Time
	if endDate.Valid {
		ed := endDate.Time
		t.EndDate = &ed
	}
	t.Normalize()
	return t, nil
}
