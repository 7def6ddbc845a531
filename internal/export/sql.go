package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// WriteSQLDump writes schema followed by one INSERT per master entity and
// tour, wrapped in a single transaction, so the output restores into an
// empty Postgres database with psql.
func WriteSQLDump(w io.Writer, schema string, generatedAt time.Time, masters []domain.MasterEntity, tours []domain.Tour) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "-- tourdesk SQL dump\n-- generated %s\n\nBEGIN;\n\n", generatedAt.UTC().Format(time.RFC3339))
	bw.WriteString(schema)
	bw.WriteString("\n")

	for _, e := range masters {
		fmt.Fprintf(bw,
			"INSERT INTO master_entities (id, kind, name, code, status, search_keywords, attributes, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s);\n",
			quote(e.ID.String()), quote(string(e.Kind)), quote(e.Name), quote(e.Code), quote(string(e.Status)),
			textArray(e.SearchKeywords), jsonLiteral(orEmptyMap(e.Attributes)), timestamp(e.CreatedAt), timestamp(e.UpdatedAt))
	}
	if len(masters) > 0 {
		bw.WriteString("\n")
	}

	for _, t := range tours {
		t.Normalize()
		fmt.Fprintf(bw,
			"INSERT INTO tours (id, code, client_name, start_date, end_date, adults, children, total_guests, company_ref, guide_ref, nationality_ref, driver_name, notes, destinations, expenses, meals, allowances, shoppings, diaries, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %d, %d, %d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s);\n",
			quote(t.ID.String()), quote(t.Code), quote(t.ClientName), dateLiteral(&t.StartDate), dateLiteral(t.EndDate),
			t.Adults, t.Children, t.TotalGuests,
			jsonLiteral(t.CompanyRef), jsonLiteral(t.GuideRef), jsonLiteral(t.NationalityRef),
			quote(t.DriverName), quote(t.Notes),
			jsonLiteral(t.Destinations), jsonLiteral(t.Expenses), jsonLiteral(t.Meals),
			jsonLiteral(t.Allowances), jsonLiteral(t.Shoppings), jsonLiteral(t.Diaries),
			timestamp(t.CreatedAt), timestamp(t.UpdatedAt))
	}

	bw.WriteString("\nCOMMIT;\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export.WriteSQLDump: %w", err)
	}
	return nil
}

// quote renders s as a standard-conforming SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func textArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return "ARRAY[" + strings.Join(quoted, ", ") + "]::text[]"
}

func jsonLiteral(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// every value passed here is a plain data struct
		panic("export: " + err.Error())
	}
	return quote(string(b)) + "::jsonb"
}

func dateLiteral(t *time.Time) string {
	if t == nil {
		return "NULL"
	}
	return quote(t.Format(dateLayout)) + "::date"
}

func timestamp(t time.Time) string {
	return quote(t.UTC().Format(time.RFC3339Nano)) + "::timestamptz"
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
