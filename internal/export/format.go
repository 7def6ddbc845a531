// Package export renders tours into the document formats operators hand to
// partners: a multi-sheet spreadsheet, a plain-text summary and a SQL dump of
// every table. The spreadsheet and text formats can be read back into the
// tour's scalar fields.
package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
)

const dateLayout = "2006-01-02"

// Labels of the scalar rows shared by the spreadsheet Tour sheet and the
// text summary. Readers match on them, so they must stay stable.
const (
	labelCode        = "Code"
	labelClient      = "Client"
	labelStartDate   = "Start date"
	labelEndDate     = "End date"
	labelAdults      = "Adults"
	labelChildren    = "Children"
	labelTotalGuests = "Total guests"
	labelCompany     = "Company"
	labelGuide       = "Guide"
	labelNationality = "Nationality"
	labelDriver      = "Driver"
	labelNotes       = "Notes"
)

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// formatMoney renders d with comma thousands separators, e.g. 1,250,000 or
// 12.5.
func formatMoney(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// scalarRows lists the label/value pairs that describe a tour's scalar fields.
func scalarRows(t domain.Tour) [][2]string {
	start := t.StartDate
	return [][2]string{
		{labelCode, t.Code},
		{labelClient, t.ClientName},
		{labelStartDate, formatDate(&start)},
		{labelEndDate, formatDate(t.EndDate)},
		{labelAdults, itoa(t.Adults)},
		{labelChildren, itoa(t.Children)},
		{labelTotalGuests, itoa(t.Adults + t.Children)},
		{labelCompany, t.CompanyRef.NameAtBooking},
		{labelGuide, t.GuideRef.NameAtBooking},
		{labelNationality, t.NationalityRef.NameAtBooking},
		{labelDriver, t.DriverName},
		{labelNotes, t.Notes},
	}
}
