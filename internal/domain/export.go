package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per line item, with tour fields
// repeated for every line on that tour. Tours with no line items yield one
// row with an empty Category.
type ExportRow struct {
	// Tour fields, repeated for every line item of the tour.
	TourID      string
	TourCode    string
	StartDate   string // "2006-01-02" formatted date
	EndDate     string // empty string when nil
	TotalGuests int
	Company     string
	Guide       string
	Nationality string

	// Line item fields. Category is one of destination, expense, meal,
	// allowance, shopping; empty when the tour has no lines.
	Category string
	ItemName string
	ItemDate *time.Time
	Price    string
	Quantity int
	Total    string
}
