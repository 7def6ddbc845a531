// Package domain contains the core data types for the tourdesk application.
// It is imported by every other internal package (repo, service, handler,
// importer, export).
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tour is the top-level aggregate: scalar booking fields, reference snapshots
// to master data, and the nested line-item collections that make up the
// tour's financial breakdown.
//
// TotalGuests is always Adults + Children; call Normalize before persisting.
type Tour struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	ClientName     string     `json:"clientName,omitempty"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Adults         int        `json:"adults"`
	Children       int        `json:"children"`
	TotalGuests    int        `json:"totalGuests"`
	CompanyRef     Ref        `json:"companyRef"`
	GuideRef       Ref        `json:"guideRef"`
	NationalityRef Ref        `json:"nationalityRef"`
	DriverName     string     `json:"driverName,omitempty"`
	Notes          string     `json:"notes,omitempty"`

	Destinations []PricedItem `json:"destinations"`
	Expenses     []PricedItem `json:"expenses"`
	Meals        []PricedItem `json:"meals"`
	Allowances   []Allowance  `json:"allowances"`
	Shoppings    []Shopping   `json:"shoppings"`
	Diaries      []Diary      `json:"diaries"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize recomputes derived fields and replaces nil collections with empty
// slices so they serialize as [] rather than null.
func (t *Tour) Normalize() {
	t.TotalGuests = t.Adults + t.Children
	if t.Destinations == nil {
		t.Destinations = []PricedItem{}
	}
	if t.Expenses == nil {
		t.Expenses = []PricedItem{}
	}
	if t.Meals == nil {
		t.Meals = []PricedItem{}
	}
	if t.Allowances == nil {
		t.Allowances = []Allowance{}
	}
	if t.Shoppings == nil {
		t.Shoppings = []Shopping{}
	}
	if t.Diaries == nil {
		t.Diaries = []Diary{}
	}
}

// PricedItem is a destination, expense or meal line. Guests is nil when the
// row applies to the whole party.
type PricedItem struct {
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Date   *time.Time      `json:"date,omitempty"`
	Guests *int            `json:"guests,omitempty"`
}

// Allowance is a per-diem (CTP) line, priced per unit rather than per guest.
type Allowance struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Date     *time.Time      `json:"date,omitempty"`
}

// Shopping records a stop at a shop place and the sales made there.
type Shopping struct {
	Name       string          `json:"name"`
	ShopRef    Ref             `json:"shopRef"`
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
	Date       *time.Time      `json:"date,omitempty"`
}

// Diary is a free-text log entry for one day of the tour.
type Diary struct {
	TypeRef Ref        `json:"typeRef"`
	Content string     `json:"content"`
	Date    *time.Time `json:"date,omitempty"`
}

// TourPatch carries a partial update. Nil fields are left untouched;
// non-nil collections replace the stored collection wholesale.
type TourPatch struct {
	Code           *string
	ClientName     *string
	StartDate      *time.Time
	EndDate        *time.Time
	ClearEndDate   bool
	Adults         *int
	Children       *int
	CompanyRef     *Ref
	GuideRef       *Ref
	NationalityRef *Ref
	DriverName     *string
	Notes          *string

	Destinations *[]PricedItem
	Expenses     *[]PricedItem
	Meals        *[]PricedItem
	Allowances   *[]Allowance
	Shoppings    *[]Shopping
	Diaries      *[]Diary
}

// Apply copies every set field of p onto t and re-normalizes it.
func (p TourPatch) Apply(t *Tour) {
	if p.Code != nil {
		t.Code = *p.Code
	}
	if p.ClientName != nil {
		t.ClientName = *p.ClientName
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.ClearEndDate {
		t.EndDate = nil
	} else if p.EndDate != nil {
		ed := *p.EndDate
		t.EndDate = &ed
	}
	if p.Adults != nil {
		t.Adults = *p.Adults
	}
	if p.Children != nil {
		t.Children = *p.Children
	}
	if p.CompanyRef != nil {
		t.CompanyRef = *p.CompanyRef
	}
	if p.GuideRef != nil {
		t.GuideRef = *p.GuideRef
	}
	if p.NationalityRef != nil {
		t.NationalityRef = *p.NationalityRef
	}
	if p.DriverName != nil {
		t.DriverName = *p.DriverName
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Destinations != nil {
		t.Destinations = *p.Destinations
	}
	if p.Expenses != nil {
		t.Expenses = *p.Expenses
	}
	if p.Meals != nil {
		t.Meals = *p.Meals
	}
	if p.Allowances != nil {
		t.Allowances = *p.Allowances
	}
	if p.Shoppings != nil {
		t.Shoppings = *p.Shoppings
	}
	if p.Diaries != nil {
		t.Diaries = *p.Diaries
	}
	t.Normalize()
}

// TourFilter narrows a tour list query. Query matches code or client name.
type TourFilter struct {
	Query string
}
