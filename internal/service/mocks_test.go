package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/repo"
)

// mockTourRepo is a hand-written test double for repo.TourRepo.
// Each method is a function field; set only the ones your test needs.
type mockTourRepo struct {
	create    func(ctx context.Context, tour domain.Tour) (domain.Tour, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	listPaged func(ctx context.Context, f domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error)
	listAll   func(ctx context.Context) ([]domain.Tour, error)
	update    func(ctx context.Context, tour domain.Tour) (domain.Tour, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTourRepo) Create(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	return m.create(ctx, tour)
}
func (m *mockTourRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	return m.getByID(ctx, id)
}
func (m *mockTourRepo) ListPaged(ctx context.Context, f domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTourRepo) ListAll(ctx context.Context) ([]domain.Tour, error) {
	return m.listAll(ctx)
}
func (m *mockTourRepo) Update(ctx context.Context, tour domain.Tour) (domain.Tour, error) {
	return m.update(ctx, tour)
}
func (m *mockTourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTourRepo must satisfy repo.TourRepo.
var _ repo.TourRepo = (*mockTourRepo)(nil)

// mockMasterRepo is a hand-written test double for repo.MasterRepo.
type mockMasterRepo struct {
	create    func(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	getByID   func(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error)
	list      func(ctx context.Context, kind domain.Kind, f domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error)
	listAll   func(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error)
	update    func(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	setStatus func(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error)
	delete    func(ctx context.Context, kind domain.Kind, id uuid.UUID) error
}

func (m *mockMasterRepo) Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	return m.create(ctx, e)
}
func (m *mockMasterRepo) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error) {
	return m.getByID(ctx, kind, id)
}
func (m *mockMasterRepo) List(ctx context.Context, kind domain.Kind, f domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error) {
	return m.list(ctx, kind, f, p)
}
func (m *mockMasterRepo) ListAll(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error) {
	return m.listAll(ctx, kind, onlyActive)
}
func (m *mockMasterRepo) Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	return m.update(ctx, e)
}
func (m *mockMasterRepo) SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error) {
	return m.setStatus(ctx, kind, id, status)
}
func (m *mockMasterRepo) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	return m.delete(ctx, kind, id)
}

var _ repo.MasterRepo = (*mockMasterRepo)(nil)

// recordingInvalidator remembers every kind it was asked to drop.
type recordingInvalidator struct {
	kinds []domain.Kind
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, kind domain.Kind) error {
	r.kinds = append(r.kinds, kind)
	return r.err
}
