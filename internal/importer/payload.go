package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// flexString accepts a JSON string, number or null. Spreadsheet exports
// routinely turn tour codes into numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	// bare numbers and booleans keep their literal form
	*f = flexString(b)
	return nil
}

// flexName accepts a plain string or an object carrying a name, as produced
// by exports of the reference snapshot format.
type flexName string

func (f *flexName) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Name          flexString `json:"name"`
			NameAtBooking flexString `json:"nameAtBooking"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if obj.NameAtBooking != "" {
			*f = flexName(obj.NameAtBooking)
		} else {
			*f = flexName(obj.Name)
		}
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = flexName(s)
	return nil
}

// rawTour is the tour object of an import row. All fields are optional.
type rawTour struct {
	Code        flexString `json:"code"`
	ClientName  flexString `json:"clientName"`
	StartDate   flexString `json:"startDate"`
	EndDate     flexString `json:"endDate"`
	Adults      flexString `json:"adults"`
	Children    flexString `json:"children"`
	TotalGuests flexString `json:"totalGuests"`
	Company     flexName   `json:"company"`
	CompanyName flexName   `json:"companyName"`
	Guide       flexName   `json:"guide"`
	GuideName   flexName   `json:"guideName"`
	Nationality flexName   `json:"nationality"`
	DriverName  flexString `json:"driverName"`
	Notes       flexString `json:"notes"`
}

func (r rawTour) company() string {
	if r.Company != "" {
		return string(r.Company)
	}
	return string(r.CompanyName)
}

func (r rawTour) guide() string {
	if r.Guide != "" {
		return string(r.Guide)
	}
	return string(r.GuideName)
}

type rawPriced struct {
	Name   flexString `json:"name"`
	Price  flexString `json:"price"`
	Date   flexString `json:"date"`
	Guests flexString `json:"guests"`
}

type rawAllowance struct {
	Name     flexString `json:"name"`
	Price    flexString `json:"price"`
	Quantity flexString `json:"quantity"`
	Date     flexString `json:"date"`
}

type rawShopping struct {
	Name       flexString `json:"name"`
	Shop       flexName   `json:"shop"`
	Amount     flexString `json:"amount"`
	Commission flexString `json:"commission"`
	Date       flexString `json:"date"`
}

type rawDiary struct {
	Type    flexName   `json:"type"`
	Content flexString `json:"content"`
	Date    flexString `json:"date"`
}

type rawSubcollections struct {
	Destinations []rawPriced    `json:"destinations"`
	Expenses     []rawPriced    `json:"expenses"`
	Meals        []rawPriced    `json:"meals"`
	Allowances   []rawAllowance `json:"allowances"`
	Shoppings    []rawShopping  `json:"shoppings"`
	Diaries      []rawDiary     `json:"diaries"`
}

// rawRow is the structural envelope every import row must satisfy.
type rawRow struct {
	Tour           json.RawMessage `json:"tour"`
	Subcollections json.RawMessage `json:"subcollections"`
}

// ParseBatch splits an import document into its rows. The document must be a
// non-empty JSON array whose elements are objects with an object-valued tour
// field. Any violation rejects the whole batch with domain.ErrInvalidImport.
func ParseBatch(data []byte) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: payload must be a JSON array of tour records", domain.ErrInvalidImport)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: payload contains no tour records", domain.ErrInvalidImport)
	}
	for i, r := range rows {
		if _, err := splitRow(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return rows, nil
}

func splitRow(raw json.RawMessage) (rawRow, error) {
	if !isObject(raw) {
		return rawRow{}, fmt.Errorf("%w: record is not an object", domain.ErrInvalidImport)
	}
	var row rawRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return rawRow{}, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	if !isObject(row.Tour) {
		return rawRow{}, fmt.Errorf("%w: record has no tour object", domain.ErrInvalidImport)
	}
	if len(row.Subcollections) > 0 && !isObject(row.Subcollections) && !isNull(row.Subcollections) {
		return rawRow{}, fmt.Errorf("%w: subcollections must be an object", domain.ErrInvalidImport)
	}
	return row, nil
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// dateLayouts are tried in order when parsing imported dates.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", "2/1/2006", time.RFC3339}

func parseDate(s flexString) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, string(s)); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", string(s))
}

// parseAmount reads prices written as 100000, "100000", "100.000",
// "100,000", "12.345,67", "1,234.56" or "1,5". When both separators appear
// the last one is the decimal mark. A lone separator followed by groups of
// three digits separates thousands; otherwise it is the decimal mark.
func parseAmount(s flexString) (decimal.Decimal, error) {
	v := strings.ReplaceAll(strings.TrimSpace(string(s)), " ", "")
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(canonicalAmount(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognised amount %q", string(s))
	}
	return d, nil
}

// canonicalAmount rewrites v with no thousands separators and a dot as the
// decimal mark. Ambiguous input is returned unchanged for the parser to
// reject.
func canonicalAmount(v string) string {
	dot, comma := strings.LastIndex(v, "."), strings.LastIndex(v, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			return strings.ReplaceAll(v[:comma], ".", "") + "." + v[comma+1:]
		}
		return strings.ReplaceAll(v[:dot], ",", "") + v[dot:]
	case comma >= 0:
		return oneSeparator(v, ",")
	case dot >= 0:
		return oneSeparator(v, ".")
	}
	return v
}

func oneSeparator(v, sep string) string {
	parts := strings.Split(v, sep)
	if thousands(parts) {
		return strings.Join(parts, "")
	}
	if len(parts) == 2 {
		return parts[0] + "." + parts[1]
	}
	return v
}

// thousands reports whether parts read as digit groups, e.g. "1", "500",
// "000". A leading zero group such as "0.125" is a decimal, not a group.
func thousands(parts []string) bool {
	head := strings.TrimPrefix(parts[0], "-")
	if len(parts) < 2 || head == "" || len(head) > 3 || head[0] == '0' || !digits(head) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !digits(p) {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// maxCount bounds guest counts and quantities.
const maxCount = 1_000_000

// parseCount reads a non-negative whole number written as 3, "3" or "3.0".
// Fractions, negative values and values above maxCount are errors.
func parseCount(s flexString) (*int, error) {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("unrecognised number %q", v)
	}
	switch {
	case math.IsNaN(f) || f != math.Trunc(f):
		return nil, fmt.Errorf("%q is not a whole number", v)
	case f < 0:
		return nil, fmt.Errorf("%q must not be negative", v)
	case f > maxCount:
		return nil, fmt.Errorf("%q exceeds %d", v, maxCount)
	}
	n := int(f)
	return &n, nil
}
