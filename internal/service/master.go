package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/repo"
	"github.com/tourdesk/tourdesk/internal/textnorm"
)

// ListInvalidator drops cached entity lists after a master write.
// cache.ListCache and importer.Loader satisfy it.
type ListInvalidator interface {
	Invalidate(ctx context.Context, kind domain.Kind) error
}

// MasterService implements business logic for every master-data kind.
type MasterService struct {
	repo        repo.MasterRepo
	invalidates []ListInvalidator
}

// NewMasterService constructs a MasterService. Every write is reported to
// each of invalidates; nil entries are skipped.
func NewMasterService(r repo.MasterRepo, invalidates ...ListInvalidator) *MasterService {
	s := &MasterService{repo: r}
	for _, inv := range invalidates {
		if inv != nil {
			s.invalidates = append(s.invalidates, inv)
		}
	}
	return s
}

// Create validates e, fills in its search keywords and persists it.
// Status defaults to active.
func (s *MasterService) Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	if e.Status == "" {
		e.Status = domain.StatusActive
	}
	if err := prepareMaster(&e); err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, e)
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.Create: %w", err)
	}
	s.invalidate(ctx, e.Kind)
	return result, nil
}

// GetByID returns a single entity of kind.
func (s *MasterService) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error) {
	result, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of entities of kind. The query is normalized the same
// way keywords are, so "da nang" finds "Đà Nẵng".
// Always returns a non-nil slice so callers can safely range over it.
func (s *MasterService) List(ctx context.Context, kind domain.Kind, filter domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("service.MasterService.List: %w: status must be active or inactive", domain.ErrValidation)
	}
	filter.Query = textnorm.Normalize(filter.Query)
	entities, total, err := s.repo.List(ctx, kind, filter, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.MasterService.List: %w", err)
	}
	if entities == nil {
		entities = []domain.MasterEntity{}
	}
	return entities, total, nil
}

// ListAll returns every entity of kind, for selectors and exports.
func (s *MasterService) ListAll(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error) {
	entities, err := s.repo.ListAll(ctx, kind, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("service.MasterService.ListAll: %w", err)
	}
	if entities == nil {
		entities = []domain.MasterEntity{}
	}
	return entities, nil
}

// Update validates and persists changes to an existing entity.
func (s *MasterService) Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	if err := prepareMaster(&e); err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.Update: %w", err)
	}
	result, err := s.repo.Update(ctx, e)
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.Update: %w", err)
	}
	s.invalidate(ctx, e.Kind)
	return result, nil
}

// SetStatus activates or soft-removes an entity.
func (s *MasterService) SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error) {
	if !status.Valid() {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.SetStatus: %w: status must be active or inactive", domain.ErrValidation)
	}
	result, err := s.repo.SetStatus(ctx, kind, id, status)
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("service.MasterService.SetStatus: %w", err)
	}
	s.invalidate(ctx, kind)
	return result, nil
}

// Delete removes an entity permanently.
func (s *MasterService) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("service.MasterService.Delete: %w", err)
	}
	s.invalidate(ctx, kind)
	return nil
}

func (s *MasterService) invalidate(ctx context.Context, kind domain.Kind) {
	for _, inv := range s.invalidates {
		if err := inv.Invalidate(ctx, kind); err != nil {
			slog.WarnContext(ctx, "entity list cache invalidation failed", "kind", kind, "error", err)
		}
	}
}

var isoCode = regexp.MustCompile(`^[A-Z]{2,3}$`)

// prepareMaster enforces the rules common to Create and Update and derives
// the search keywords.
//   - Kind must be known and Name non-blank.
//   - Status must be active or inactive.
//   - Nationality codes are upper-cased and must be two or three letters.
func prepareMaster(e *domain.MasterEntity) error {
	if _, err := domain.ParseKind(string(e.Kind)); err != nil {
		return err
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: status must be active or inactive", domain.ErrValidation)
	}
	e.Code = strings.ToUpper(strings.TrimSpace(e.Code))
	if e.Kind == domain.KindNationality && e.Code != "" && !isoCode.MatchString(e.Code) {
		return fmt.Errorf("%w: nationality code must be 2 or 3 letters", domain.ErrValidation)
	}
	e.SearchKeywords = textnorm.Keywords(e.Name)
	if c := strings.ToLower(e.Code); c != "" && !slices.Contains(e.SearchKeywords, c) {
		e.SearchKeywords = append(e.SearchKeywords, c)
	}
	return nil
}
