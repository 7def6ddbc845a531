// Package handler implements the HTTP handlers for the tourdesk API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, master.go, tour.go, import.go, export.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/importer"
	"github.com/tourdesk/tourdesk/internal/service"
	"github.com/tourdesk/tourdesk/internal/totals"
	"github.com/tourdesk/tourdesk/spec"
)

// MasterServicer defines the master-data operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type MasterServicer interface {
	Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error)
	List(ctx context.Context, kind domain.Kind, filter domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error)
	Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error)
	Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error
}

// TourServicer defines the tour operations the handlers depend on.
type TourServicer interface {
	Create(ctx context.Context, tour domain.Tour) (domain.Tour, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	ListPaged(ctx context.Context, filter domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error)
	Update(ctx context.Context, tour domain.Tour) (domain.Tour, error)
	Patch(ctx context.Context, id uuid.UUID, p domain.TourPatch) (domain.Tour, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Totals(ctx context.Context, id uuid.UUID) (domain.Tour, totals.Summary, error)
}

// ImportServicer defines the import workflow the handlers depend on.
type ImportServicer interface {
	Preview(ctx context.Context, session string, data []byte) ([]importer.Resolution, error)
	Backfill(ctx context.Context, req service.BackfillRequest) ([]domain.Tour, int, error)
	Confirm(ctx context.Context, session string, tours []domain.Tour) ([]domain.Tour, error)
}

// ExportServicer defines the export operations the handlers depend on.
type ExportServicer interface {
	Rows(ctx context.Context) ([]domain.ExportRow, error)
	TourXLSX(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error)
	TourText(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error)
	SQLDump(ctx context.Context, w io.Writer) error
}

// Server holds the services every handler needs.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	masters MasterServicer
	tours   TourServicer
	imports ImportServicer
	export  ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(masters MasterServicer, tours TourServicer, imports ImportServicer, export ExportServicer) *Server {
	return &Server{masters: masters, tours: tours, imports: imports, export: export}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes builds the chi router for every endpoint. Cross-cutting middleware
// (request ids, logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/master/{kind}", func(r chi.Router) {
		r.Get("/", s.ListMaster)
		r.Post("/", s.CreateMaster)
		r.Get("/{id}", s.GetMaster)
		r.Put("/{id}", s.UpdateMaster)
		r.Delete("/{id}", s.DeleteMaster)
		r.Post("/{id}/status", s.SetMasterStatus)
	})

	r.Route("/tours", func(r chi.Router) {
		r.Get("/", s.ListTours)
		r.Post("/", s.CreateTour)
		r.Get("/{id}", s.GetTour)
		r.Put("/{id}", s.UpdateTour)
		r.Patch("/{id}", s.PatchTour)
		r.Delete("/{id}", s.DeleteTour)
		r.Get("/{id}/totals", s.GetTourTotals)
		r.Get("/{id}/export", s.ExportTour)
	})

	r.Post("/imports/preview", s.PreviewImport)
	r.Post("/imports/backfill", s.BackfillImport)
	r.Post("/imports/confirm", s.ConfirmImport)

	r.Get("/export", s.GetExport)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(spec.OpenAPI) //nolint:errcheck
}
