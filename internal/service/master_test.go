package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/importer"
	"github.com/tourdesk/tourdesk/internal/service"
)

func echoMasterRepo() *mockMasterRepo {
	return &mockMasterRepo{
		create: func(_ context.Context, e domain.MasterEntity) (domain.MasterEntity, error) { return e, nil },
		update: func(_ context.Context, e domain.MasterEntity) (domain.MasterEntity, error) { return e, nil },
	}
}

func TestMasterService_Create_DefaultsAndKeywords(t *testing.T) {
	inv := &recordingInvalidator{}
	svc := service.NewMasterService(echoMasterRepo(), inv)

	got, err := svc.Create(context.Background(), domain.MasterEntity{
		Kind: domain.KindCompany,
		Name: "  Việt Á Travel ",
	})

	require.NoError(t, err)
	assert.Equal(t, "Việt Á Travel", got.Name)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Contains(t, got.SearchKeywords, "viet a travel")
	assert.Contains(t, got.SearchKeywords, "viet")
	assert.Equal(t, []domain.Kind{domain.KindCompany}, inv.kinds)
}

func TestMasterService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.MasterEntity
	}{
		{"blank name", domain.MasterEntity{Kind: domain.KindGuide, Name: "  "}},
		{"unknown kind", domain.MasterEntity{Kind: "planets", Name: "Mars"}},
		{"bad status", domain.MasterEntity{Kind: domain.KindGuide, Name: "Tu", Status: "archived"}},
		{"bad nationality code", domain.MasterEntity{Kind: domain.KindNationality, Name: "France", Code: "FRA1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			svc := service.NewMasterService(echoMasterRepo(), inv)

			_, err := svc.Create(context.Background(), tt.entity)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, inv.kinds, "failed writes must not invalidate")
		})
	}
}

func TestMasterService_Create_NationalityCodeUppercasedAndSearchable(t *testing.T) {
	svc := service.NewMasterService(echoMasterRepo(), nil)

	got, err := svc.Create(context.Background(), domain.MasterEntity{
		Kind: domain.KindNationality,
		Name: "Pháp",
		Code: "fr",
	})

	require.NoError(t, err)
	assert.Equal(t, "FR", got.Code)
	assert.Contains(t, got.SearchKeywords, "fr")
	assert.Contains(t, got.SearchKeywords, "phap")
}

func TestMasterService_Create_InvalidationFailureIsNotFatal(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	svc := service.NewMasterService(echoMasterRepo(), inv)

	_, err := svc.Create(context.Background(), domain.MasterEntity{Kind: domain.KindGuide, Name: "Cao Hữu Tu"})

	assert.NoError(t, err)
	assert.Len(t, inv.kinds, 1)
}

func TestMasterService_List_NormalizesQuery(t *testing.T) {
	var got domain.MasterFilter
	r := &mockMasterRepo{
		list: func(_ context.Context, _ domain.Kind, f domain.MasterFilter, _ domain.PaginationParams) ([]domain.MasterEntity, int64, error) {
			got = f
			return nil, 0, nil
		},
	}
	svc := service.NewMasterService(r, nil)

	entities, _, err := svc.List(context.Background(), domain.KindProvince,
		domain.MasterFilter{Query: "Đà Nẵng"}, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, "da nang", got.Query)
	assert.NotNil(t, entities)
}

func TestMasterService_List_InvalidStatus(t *testing.T) {
	svc := service.NewMasterService(&mockMasterRepo{}, nil)

	_, _, err := svc.List(context.Background(), domain.KindProvince,
		domain.MasterFilter{Status: "gone"}, domain.NewPaginationParams(nil, nil))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMasterService_SetStatus(t *testing.T) {
	id := uuid.New()
	inv := &recordingInvalidator{}
	r := &mockMasterRepo{
		setStatus: func(_ context.Context, kind domain.Kind, gotID uuid.UUID, status domain.Status) (domain.MasterEntity, error) {
			return domain.MasterEntity{ID: gotID, Kind: kind, Status: status}, nil
		},
	}
	svc := service.NewMasterService(r, inv)

	got, err := svc.SetStatus(context.Background(), domain.KindHotel, id, domain.StatusInactive)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)
	assert.Equal(t, []domain.Kind{domain.KindHotel}, inv.kinds)

	_, err = svc.SetStatus(context.Background(), domain.KindHotel, id, "deleted")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMasterService_Delete_NotFound(t *testing.T) {
	inv := &recordingInvalidator{}
	r := &mockMasterRepo{
		delete: func(_ context.Context, _ domain.Kind, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := service.NewMasterService(r, inv)

	err := svc.Delete(context.Background(), domain.KindGuide, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, inv.kinds)
}

func TestMasterService_WritesReachEveryInvalidator(t *testing.T) {
	first, second := &recordingInvalidator{}, &recordingInvalidator{}
	svc := service.NewMasterService(echoMasterRepo(), first, nil, second)

	_, err := svc.Create(context.Background(), domain.MasterEntity{Kind: domain.KindGuide, Name: "Tu"})

	require.NoError(t, err)
	assert.Equal(t, []domain.Kind{domain.KindGuide}, first.kinds)
	assert.Equal(t, []domain.Kind{domain.KindGuide}, second.kinds)
}

func TestMasterService_CreateRefreshesImportSession(t *testing.T) {
	var stored []domain.MasterEntity
	r := &mockMasterRepo{
		create: func(_ context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
			e.ID = uuid.New()
			stored = append(stored, e)
			return e, nil
		},
		listAll: func(_ context.Context, kind domain.Kind, _ bool) ([]domain.MasterEntity, error) {
			var out []domain.MasterEntity
			for _, e := range stored {
				if e.Kind == kind {
					out = append(out, e)
				}
			}
			return out, nil
		},
	}
	loader := importer.NewLoader(r, nil, time.Minute)
	svc := service.NewMasterService(r, loader)
	ctx := context.Background()

	c, err := loader.Load(ctx, "s1")
	require.NoError(t, err)
	_, ok := c.Company("Hoàng Long")
	require.False(t, ok)

	_, err = svc.Create(ctx, domain.MasterEntity{Kind: domain.KindCompany, Name: "Hoàng Long"})
	require.NoError(t, err)

	c, err = loader.Load(ctx, "s1")
	require.NoError(t, err)
	_, ok = c.Company("hoang long")
	assert.True(t, ok)
}
