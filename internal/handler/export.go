package handler

import (
	"bytes"
	"encoding/csv"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"tour_id", "tour_code", "start_date", "end_date", "total_guests",
	"company", "guide", "nationality",
	"category", "item_name", "item_date", "price", "quantity", "total",
}

// ExportRow is one line item in the JSON export.
type ExportRow struct {
	TourId      openapi_types.UUID  `json:"tourId"`
	TourCode    string              `json:"tourCode"`
	StartDate   openapi_types.Date  `json:"startDate"`
	EndDate     *openapi_types.Date `json:"endDate,omitempty"`
	TotalGuests int                 `json:"totalGuests"`
	Company     *string             `json:"company,omitempty"`
	Guide       *string             `json:"guide,omitempty"`
	Nationality *string             `json:"nationality,omitempty"`
	Category    *string             `json:"category,omitempty"`
	ItemName    *string             `json:"itemName,omitempty"`
	ItemDate    *openapi_types.Date `json:"itemDate,omitempty"`
	Price       *string             `json:"price,omitempty"`
	Quantity    int                 `json:"quantity"`
	Total       *string             `json:"total,omitempty"`
}

// GetExport handles GET /export.
// ?format=json (default) and ?format=csv return a flat table with one row per
// line item; ?format=sql returns a restorable SQL dump of every table.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "json", "csv":
		rows, err := s.export.Rows(r.Context())
		if err != nil {
			writeError(w, r, err, "")
			return
		}
		if format == "csv" {
			writeCSV(w, rows)
			return
		}
		writeJSON(w, http.StatusOK, buildJSONRows(rows))
	case "sql":
		var buf bytes.Buffer
		if err := s.export.SQLDump(r.Context(), &buf); err != nil {
			writeError(w, r, err, "")
			return
		}
		w.Header().Set("Content-Type", "application/sql; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment("tourdesk-"+time.Now().UTC().Format("20060102"), "sql"))
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w) //nolint:errcheck
	default:
		writeJSON(w, http.StatusBadRequest, requestBody("format must be json, csv or sql"))
	}
}

// buildJSONRows converts domain rows to the JSON response rows.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToResponse(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}

// domainRowToResponse maps a domain.ExportRow to its JSON form.
// Fields that are empty strings become nil pointers (omitempty in JSON).
func domainRowToResponse(r domain.ExportRow) ExportRow {
	tourID, _ := uuid.Parse(r.TourID)
	row := ExportRow{
		TourId:      tourID,
		TourCode:    r.TourCode,
		StartDate:   mustParseDate(r.StartDate),
		TotalGuests: r.TotalGuests,
		Company:     optional(r.Company),
		Guide:       optional(r.Guide),
		Nationality: optional(r.Nationality),
		Category:    optional(r.Category),
		ItemName:    optional(r.ItemName),
		Price:       optional(r.Price),
		Quantity:    r.Quantity,
		Total:       optional(r.Total),
	}
	if r.EndDate != "" {
		d := mustParseDate(r.EndDate)
		row.EndDate = &d
	}
	if r.ItemDate != nil {
		row.ItemDate = &openapi_types.Date{Time: *r.ItemDate}
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	itemDate := ""
	if r.ItemDate != nil {
		itemDate = r.ItemDate.Format("2006-01-02")
	}
	return []string{
		r.TourID,
		r.TourCode,
		r.StartDate,
		r.EndDate,
		strconv.Itoa(r.TotalGuests),
		r.Company,
		r.Guide,
		r.Nationality,
		r.Category,
		r.ItemName,
		itemDate,
		r.Price,
		strconv.Itoa(r.Quantity),
		r.Total,
	}
}

// mustParseDate parses an "2006-01-02" string into an openapi_types.Date.
// Panics on malformed input; callers are expected to pass service-generated dates.
func mustParseDate(s string) openapi_types.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic("handler: malformed date from service: " + s)
	}
	return openapi_types.Date{Time: t}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// attachment builds a Content-Disposition header for a download named after
// name, with anything but letters, digits, dashes and underscores replaced.
func attachment(name, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if safe == "" {
		safe = "tour"
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": safe + "." + ext})
}
