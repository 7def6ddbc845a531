package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tourdesk/tourdesk/internal/domain"
)

func itoa(n int) string { return strconv.Itoa(n) }

// applyScalar sets the tour field named by label from its exported value.
// Unknown labels are ignored so readers tolerate extra rows.
func applyScalar(t *domain.Tour, label, value string) error {
	value = strings.TrimSpace(value)
	switch label {
	case labelCode:
		t.Code = value
	case labelClient:
		t.ClientName = value
	case labelStartDate:
		if value == "" {
			return nil
		}
		d, err := time.Parse(dateLayout, value)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		t.StartDate = d
	case labelEndDate:
		if value == "" {
			t.EndDate = nil
			return nil
		}
		d, err := time.Parse(dateLayout, value)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		t.EndDate = &d
	case labelAdults, labelChildren:
		n := 0
		if value != "" {
			var err error
			if n, err = strconv.Atoi(value); err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
		}
		if label == labelAdults {
			t.Adults = n
		} else {
			t.Children = n
		}
	case labelCompany:
		t.CompanyRef.NameAtBooking = value
	case labelGuide:
		t.GuideRef.NameAtBooking = value
	case labelNationality:
		t.NationalityRef.NameAtBooking = value
	case labelDriver:
		t.DriverName = value
	case labelNotes:
		t.Notes = value
	}
	return nil
}
