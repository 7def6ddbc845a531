package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/importer"
)

// TourCreator validates and persists tours. TourService satisfies it.
type TourCreator interface {
	Validate(tour domain.Tour) error
	Create(ctx context.Context, tour domain.Tour) (domain.Tour, error)
}

// MasterGetter looks up one master entity. MasterService satisfies it.
type MasterGetter interface {
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error)
}

// ImportService turns JSON import batches into review rows, applies the
// operator's reference fixes and commits reviewed batches as tours.
type ImportService struct {
	loader   *importer.Loader
	tours    TourCreator
	masters  MasterGetter
	defaults importer.Defaults
}

// NewImportService constructs an ImportService.
func NewImportService(loader *importer.Loader, tours TourCreator, masters MasterGetter, defaults importer.Defaults) *ImportService {
	return &ImportService{loader: loader, tours: tours, masters: masters, defaults: defaults}
}

// Preview parses data and resolves every row against the master data cached
// for session. A structurally invalid batch fails as a whole with
// domain.ErrInvalidImport.
func (s *ImportService) Preview(ctx context.Context, session string, data []byte) ([]importer.Resolution, error) {
	rows, err := importer.ParseBatch(data)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Preview: %w", err)
	}
	cache, err := s.loader.Load(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Preview: %w", err)
	}
	resolutions, err := importer.NewResolver(cache, s.defaults).ResolveBatch(rows)
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Preview: %w", err)
	}

	unresolved := 0
	for _, r := range resolutions {
		if len(r.Unresolved) > 0 {
			unresolved++
		}
	}
	slog.InfoContext(ctx, "import batch resolved",
		"rows", len(resolutions),
		"unresolved_rows", unresolved,
		"session", session,
	)
	return resolutions, nil
}

// BackfillRequest points reviewed rows at a master entity, either one picked
// from a selector or one just created for them. With Row nil every
// unresolved row whose name matches the entity is updated; otherwise only
// row *Row (0-based) is.
type BackfillRequest struct {
	Tours    []domain.Tour
	Field    importer.Field
	EntityID uuid.UUID
	Row      *int
}

// Backfill loads the entity named by req and applies it to the reviewed
// tours. It returns the updated tours and how many of them changed.
func (s *ImportService) Backfill(ctx context.Context, req BackfillRequest) ([]domain.Tour, int, error) {
	entity, err := s.masters.GetByID(ctx, req.Field.Kind(), req.EntityID)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ImportService.Backfill: %w", err)
	}
	if entity.Status != domain.StatusActive {
		return nil, 0, fmt.Errorf("service.ImportService.Backfill: %w: %s %q is inactive",
			domain.ErrValidation, entity.Kind, entity.Name)
	}

	review := importer.NewReviewFromTours(req.Tours)
	changed := 1
	if req.Row != nil {
		err = review.Backfill(*req.Row, req.Field, entity)
	} else {
		changed, err = review.BackfillAll(req.Field, entity)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("service.ImportService.Backfill: %w", err)
	}

	rows := review.Rows()
	tours := make([]domain.Tour, len(rows))
	for i, r := range rows {
		tours[i] = r.Tour
	}
	return tours, changed, nil
}

// Confirm gates the reviewed tours on resolved references and on the rules
// TourService.Create enforces, then creates them in order. Nothing is created
// unless every row passes both checks. If a create still fails, the tours
// already created are returned along with the error. The session's entity
// cache is dropped once every tour is saved.
func (s *ImportService) Confirm(ctx context.Context, session string, tours []domain.Tour) ([]domain.Tour, error) {
	ready, err := importer.NewReviewFromTours(tours).Confirm()
	if err != nil {
		return nil, fmt.Errorf("service.ImportService.Confirm: %w", err)
	}

	var invalid []string
	for i, t := range ready {
		if err := s.tours.Validate(t); err != nil {
			msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
			invalid = append(invalid, fmt.Sprintf("row %d: %s", i+1, msg))
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("service.ImportService.Confirm: %w: %s", domain.ErrValidation, strings.Join(invalid, "; "))
	}

	created := make([]domain.Tour, 0, len(ready))
	for i, t := range ready {
		saved, err := s.tours.Create(ctx, t)
		if err != nil {
			slog.WarnContext(ctx, "import stopped", "created", len(created), "failed_row", i+1, "error", err)
			return created, fmt.Errorf("service.ImportService.Confirm: row %d: %w", i+1, err)
		}
		created = append(created, saved)
	}

	if session != "" {
		s.loader.Forget(session)
	}
	slog.InfoContext(ctx, "import confirmed", "tours", len(created), "session", session)
	return created, nil
}
