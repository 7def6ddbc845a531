package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/totals"
)

// WriteText writes a plain-text summary of t: one "Label: value" line per
// scalar field, then a section per non-empty line-item tab and the totals.
func WriteText(w io.Writer, t domain.Tour, s totals.Summary) error {
	bw := bufio.NewWriter(w)

	for _, kv := range scalarRows(t) {
		fmt.Fprintf(bw, "%s: %s\n", kv[0], oneLine(kv[1]))
	}

	guests := t.Adults + t.Children
	writePriced := func(title string, items []domain.PricedItem) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(bw, "\n== %s ==\n", title)
		for _, it := range items {
			n := totals.EffectiveGuests(it.Guests, guests)
			fmt.Fprintf(bw, "- %s %s: %s x %d = %s\n",
				dateOrDash(formatDate(it.Date)), oneLine(it.Name), formatMoney(it.Price), n,
				formatMoney(totals.LineTotal(it, guests)))
		}
	}
	writePriced("Destinations", t.Destinations)
	writePriced("Expenses", t.Expenses)
	writePriced("Meals", t.Meals)

	if len(t.Allowances) > 0 {
		fmt.Fprint(bw, "\n== Allowances ==\n")
		for _, a := range t.Allowances {
			fmt.Fprintf(bw, "- %s %s: %s x %d = %s\n",
				dateOrDash(formatDate(a.Date)), oneLine(a.Name), formatMoney(a.Price), a.Quantity,
				formatMoney(a.Price.Mul(decimal.NewFromInt(int64(a.Quantity)))))
		}
	}
	if len(t.Shoppings) > 0 {
		fmt.Fprint(bw, "\n== Shopping ==\n")
		for _, sh := range t.Shoppings {
			fmt.Fprintf(bw, "- %s %s (%s): %s, commission %s\n",
				dateOrDash(formatDate(sh.Date)), oneLine(sh.Name), oneLine(sh.ShopRef.NameAtBooking),
				formatMoney(sh.Amount), formatMoney(sh.Commission))
		}
	}
	if len(t.Diaries) > 0 {
		fmt.Fprint(bw, "\n== Diary ==\n")
		for _, d := range t.Diaries {
			fmt.Fprintf(bw, "- %s [%s] %s\n", dateOrDash(formatDate(d.Date)), oneLine(d.TypeRef.NameAtBooking), oneLine(d.Content))
		}
	}

	fmt.Fprint(bw, "\n== Totals ==\n")
	fmt.Fprintf(bw, "Destinations: %s\n", formatMoney(s.Destinations))
	fmt.Fprintf(bw, "Expenses: %s\n", formatMoney(s.Expenses))
	fmt.Fprintf(bw, "Meals: %s\n", formatMoney(s.Meals))
	fmt.Fprintf(bw, "Allowances: %s\n", formatMoney(s.Allowances))
	fmt.Fprintf(bw, "Shopping: %s\n", formatMoney(s.Shopping))
	fmt.Fprintf(bw, "Grand total: %s\n", formatMoney(s.Grand))

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export.WriteText: %w", err)
	}
	return nil
}

// ParseText reads the scalar fields back from a summary written by WriteText.
// Parsing stops at the first section heading.
func ParseText(r io.Reader) (domain.Tour, error) {
	var t domain.Tour
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "== ") {
			break
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := applyScalar(&t, label, value); err != nil {
			return domain.Tour{}, fmt.Errorf("export.ParseText: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return domain.Tour{}, fmt.Errorf("export.ParseText: %w", err)
	}
	t.Normalize()
	return t, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dateOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
