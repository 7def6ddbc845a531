package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/handler"
)

func exportRows() []domain.ExportRow {
	itemDate := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	id := uuid.NewString()
	return []domain.ExportRow{
		{
			TourID: id, TourCode: "VA-0301", StartDate: "2025-03-01", EndDate: "2025-03-05",
			TotalGuests: 5, Company: "Việt Á", Category: "destination", ItemName: "Ba Na Hills",
			ItemDate: &itemDate, Price: "100", Quantity: 3, Total: "300",
		},
		{TourID: uuid.NewString(), TourCode: "VA-0302", StartDate: "2025-04-01", TotalGuests: 2},
	}
}

func TestGetExport_jsonByDefault(t *testing.T) {
	m := &mockExportServicer{
		rows: func(_ context.Context) ([]domain.ExportRow, error) { return exportRows(), nil },
	}

	rec := do(t, exportServer(m), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []handler.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "VA-0301", rows[0].TourCode)
	require.NotNil(t, rows[0].EndDate)
	assert.Equal(t, "2025-03-05", rows[0].EndDate.String())
	require.NotNil(t, rows[0].ItemDate)
	assert.Nil(t, rows[1].Category)
	assert.Nil(t, rows[1].EndDate)
}

func TestGetExport_csv(t *testing.T) {
	m := &mockExportServicer{
		rows: func(_ context.Context) ([]domain.ExportRow, error) { return exportRows(), nil },
	}

	rec := do(t, exportServer(m), http.MethodGet, "/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")
	assert.Equal(t, "tour_id", records[0][0])
	assert.Equal(t, "Ba Na Hills", records[1][9])
	assert.Equal(t, "2025-03-02", records[1][10])
	assert.Equal(t, "300", records[1][13])
	assert.Equal(t, "", records[2][8])
}

func TestGetExport_sql(t *testing.T) {
	m := &mockExportServicer{
		sqlDump: func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "BEGIN;\nCOMMIT;\n")
			return err
		},
	}

	rec := do(t, exportServer(m), http.MethodGet, "/export?format=sql", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/sql")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".sql")
	assert.Equal(t, "BEGIN;\nCOMMIT;\n", rec.Body.String())
}

func TestGetExport_unknownFormatIs400(t *testing.T) {
	rec := do(t, exportServer(&mockExportServicer{}), http.MethodGet, "/export?format=xml", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
