package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/totals"
)

// Sheet names of the tour workbook.
const (
	SheetTour         = "Tour"
	SheetDestinations = "Destinations"
	SheetExpenses     = "Expenses"
	SheetMeals        = "Meals"
	SheetAllowances   = "Allowances"
	SheetShopping     = "Shopping"
)

var pricedHeader = []any{"Date", "Name", "Price", "Guests", "Total"}

// WriteXLSX writes t as a workbook: a Tour sheet of label/value rows followed
// by the tab totals, and one sheet per line-item category.
func WriteXLSX(w io.Writer, t domain.Tour, s totals.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTour); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	rows := [][]any{{"Field", "Value"}}
	for _, kv := range scalarRows(t) {
		rows = append(rows, []any{kv[0], kv[1]})
	}
	rows = append(rows,
		[]any{},
		[]any{"Destinations total", money(s.Destinations)},
		[]any{"Expenses total", money(s.Expenses)},
		[]any{"Meals total", money(s.Meals)},
		[]any{"Allowances total", money(s.Allowances)},
		[]any{"Shopping total", money(s.Shopping)},
		[]any{"Grand total", money(s.Grand)},
	)
	if err := writeRows(f, SheetTour, rows); err != nil {
		return err
	}

	guests := t.Adults + t.Children
	for _, tab := range []struct {
		sheet string
		items []domain.PricedItem
	}{
		{SheetDestinations, t.Destinations},
		{SheetExpenses, t.Expenses},
		{SheetMeals, t.Meals},
	} {
		rows := [][]any{pricedHeader}
		for _, it := range tab.items {
			rows = append(rows, []any{
				formatDate(it.Date), it.Name, money(it.Price),
				totals.EffectiveGuests(it.Guests, guests), money(totals.LineTotal(it, guests)),
			})
		}
		if err := newSheet(f, tab.sheet, rows); err != nil {
			return err
		}
	}

	allowances := [][]any{{"Date", "Name", "Price", "Quantity", "Total"}}
	for _, a := range t.Allowances {
		allowances = append(allowances, []any{
			formatDate(a.Date), a.Name, money(a.Price), a.Quantity,
			money(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity)))),
		})
	}
	if err := newSheet(f, SheetAllowances, allowances); err != nil {
		return err
	}

	shopping := [][]any{{"Date", "Name", "Shop", "Amount", "Commission"}}
	for _, sh := range t.Shoppings {
		shopping = append(shopping, []any{
			formatDate(sh.Date), sh.Name, sh.ShopRef.NameAtBooking, money(sh.Amount), money(sh.Commission),
		})
	}
	if err := newSheet(f, SheetShopping, shopping); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}

// ReadTourXLSX reads the scalar fields of a tour back from a workbook written
// by WriteXLSX. Line items and reference ids are not restored.
func ReadTourXLSX(r io.Reader) (domain.Tour, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("export.ReadTourXLSX: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetTour)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("export.ReadTourXLSX: %w", err)
	}
	var t domain.Tour
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		if err := applyScalar(&t, row[0], value); err != nil {
			return domain.Tour{}, fmt.Errorf("export.ReadTourXLSX: %w", err)
		}
	}
	t.Normalize()
	return t, nil
}

func newSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("export.WriteXLSX: sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export.WriteXLSX: sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// money converts d to a float for numeric spreadsheet cells.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
