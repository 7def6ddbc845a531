package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/handler"
	"github.com/tourdesk/tourdesk/internal/importer"
	"github.com/tourdesk/tourdesk/internal/service"
	"github.com/tourdesk/tourdesk/internal/totals"
)

// mockMasterServicer is a test double for handler.MasterServicer.
// Set only the method fields your test needs.
type mockMasterServicer struct {
	create    func(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	getByID   func(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error)
	list      func(ctx context.Context, kind domain.Kind, f domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error)
	update    func(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)
	setStatus func(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error)
	delete    func(ctx context.Context, kind domain.Kind, id uuid.UUID) error
}

func (m *mockMasterServicer) Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	return m.create(ctx, e)
}
func (m *mockMasterServicer) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error) {
	return m.getByID(ctx, kind, id)
}
func (m *mockMasterServicer) List(ctx context.Context, kind domain.Kind, f domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error) {
	return m.list(ctx, kind, f, p)
}
func (m *mockMasterServicer) Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	return m.update(ctx, e)
}
func (m *mockMasterServicer) SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error) {
	return m.setStatus(ctx, kind, id, status)
}
func (m *mockMasterServicer) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	return m.delete(ctx, kind, id)
}

// compile-time check: mockMasterServicer must satisfy handler.MasterServicer.
var _ handler.MasterServicer = (*mockMasterServicer)(nil)

// mockTourServicer is a test double for handler.TourServicer.
type mockTourServicer struct {
	create    func(ctx context.Context, t domain.Tour) (domain.Tour, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	listPaged func(ctx context.Context, f domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error)
	update    func(ctx context.Context, t domain.Tour) (domain.Tour, error)
	patch     func(ctx context.Context, id uuid.UUID, p domain.TourPatch) (domain.Tour, error)
	delete    func(ctx context.Context, id uuid.UUID) error
	totals    func(ctx context.Context, id uuid.UUID) (domain.Tour, totals.Summary, error)
}

func (m *mockTourServicer) Create(ctx context.Context, t domain.Tour) (domain.Tour, error) {
	return m.create(ctx, t)
}
func (m *mockTourServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	return m.getByID(ctx, id)
}
func (m *mockTourServicer) ListPaged(ctx context.Context, f domain.TourFilter, p domain.PaginationParams) ([]domain.Tour, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTourServicer) Update(ctx context.Context, t domain.Tour) (domain.Tour, error) {
	return m.update(ctx, t)
}
func (m *mockTourServicer) Patch(ctx context.Context, id uuid.UUID, p domain.TourPatch) (domain.Tour, error) {
	return m.patch(ctx, id, p)
}
func (m *mockTourServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTourServicer) Totals(ctx context.Context, id uuid.UUID) (domain.Tour, totals.Summary, error) {
	return m.totals(ctx, id)
}

var _ handler.TourServicer = (*mockTourServicer)(nil)

// mockImportServicer is a test double for handler.ImportServicer.
type mockImportServicer struct {
	preview  func(ctx context.Context, session string, data []byte) ([]importer.Resolution, error)
	backfill func(ctx context.Context, req service.BackfillRequest) ([]domain.Tour, int, error)
	confirm  func(ctx context.Context, session string, tours []domain.Tour) ([]domain.Tour, error)
}

func (m *mockImportServicer) Preview(ctx context.Context, session string, data []byte) ([]importer.Resolution, error) {
	return m.preview(ctx, session, data)
}
func (m *mockImportServicer) Backfill(ctx context.Context, req service.BackfillRequest) ([]domain.Tour, int, error) {
	return m.backfill(ctx, req)
}
func (m *mockImportServicer) Confirm(ctx context.Context, session string, tours []domain.Tour) ([]domain.Tour, error) {
	return m.confirm(ctx, session, tours)
}

var _ handler.ImportServicer = (*mockImportServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	rows     func(ctx context.Context) ([]domain.ExportRow, error)
	tourXLSX func(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error)
	tourText func(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error)
	sqlDump  func(ctx context.Context, w io.Writer) error
}

func (m *mockExportServicer) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	return m.rows(ctx)
}
func (m *mockExportServicer) TourXLSX(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error) {
	return m.tourXLSX(ctx, id, w)
}
func (m *mockExportServicer) TourText(ctx context.Context, id uuid.UUID, w io.Writer) (domain.Tour, error) {
	return m.tourText(ctx, id, w)
}
func (m *mockExportServicer) SQLDump(ctx context.Context, w io.Writer) error {
	return m.sqlDump(ctx, w)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// do sends one request through the full router, exactly as main.go wires it.
func do(t *testing.T, srv *handler.Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func intPtr(n int) *int { return &n }

