package importer

import (
	"encoding/json"
	"fmt"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/textnorm"
)

// Field names a reference on a tour that import resolution fills in.
type Field string

const (
	FieldCompany     Field = "company"
	FieldGuide       Field = "guide"
	FieldNationality Field = "nationality"
)

// Fields lists the resolvable references in review order.
var Fields = []Field{FieldCompany, FieldGuide, FieldNationality}

// Kind is the master kind a field references.
func (f Field) Kind() domain.Kind {
	switch f {
	case FieldCompany:
		return domain.KindCompany
	case FieldGuide:
		return domain.KindGuide
	default:
		return domain.KindNationality
	}
}

// ParseField validates s against the known fields.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown reference field %q", domain.ErrValidation, s)
}

// Defaults are the names substituted when an import row leaves a reference
// blank. An empty default leaves the reference blank as well.
type Defaults struct {
	Company     string
	Guide       string
	Nationality string
}

func (d Defaults) forField(f Field) string {
	switch f {
	case FieldCompany:
		return d.Company
	case FieldGuide:
		return d.Guide
	default:
		return d.Nationality
	}
}

// RawNames are the reference names exactly as they appeared in the import
// file, kept for display next to whatever they resolved to.
type RawNames struct {
	Company     string `json:"company"`
	Guide       string `json:"guide"`
	Nationality string `json:"nationality"`
}

// Resolution is the outcome of resolving one import row.
// Unresolved lists the fields whose reference id is still empty; Warnings
// collects values that could not be parsed and were left at their zero value.
type Resolution struct {
	Tour       domain.Tour `json:"tour"`
	Raw        RawNames    `json:"raw"`
	Unresolved []Field     `json:"unresolved"`
	Warnings   []string    `json:"warnings"`
}

// Resolver maps import rows onto tours using an EntityCache.
type Resolver struct {
	cache     *EntityCache
	defaults  Defaults
	threshold float64
}

// NewResolver constructs a Resolver with the default fuzzy threshold.
func NewResolver(cache *EntityCache, defaults Defaults) *Resolver {
	return &Resolver{cache: cache, defaults: defaults, threshold: textnorm.DefaultThreshold}
}

// WithThreshold returns a copy of r that accepts fuzzy matches scoring at or
// below threshold.
func (r *Resolver) WithThreshold(threshold float64) *Resolver {
	cp := *r
	cp.threshold = threshold
	return &cp
}

// ResolveName resolves a single reference. An exact normalized match always
// wins; otherwise the closest fuzzy match within the threshold is used. With
// no match the reference is returned unresolved, named after the input or,
// when the input is blank, after the field's default.
func (r *Resolver) ResolveName(f Field, name string) domain.Ref {
	candidate := name
	if textnorm.Normalize(candidate) == "" {
		candidate = r.defaults.forField(f)
	}
	if textnorm.Normalize(candidate) == "" {
		return domain.Ref{}
	}
	if e, ok := r.cache.exactFor(f, candidate); ok {
		return domain.RefTo(e)
	}
	if e, ok := r.cache.indexFor(f).fuzzy(candidate, r.threshold); ok {
		return domain.RefTo(e)
	}
	return domain.Ref{NameAtBooking: candidate}
}

// Resolve converts one raw import row into a tour. It fails only when the
// row is structurally invalid; unknown names, unparsable dates and amounts
// are reported through the Resolution instead.
func (r *Resolver) Resolve(raw json.RawMessage) (Resolution, error) {
	row, err := splitRow(raw)
	if err != nil {
		return Resolution{}, err
	}
	var rt rawTour
	if err := json.Unmarshal(row.Tour, &rt); err != nil {
		return Resolution{}, fmt.Errorf("%w: tour: %v", domain.ErrInvalidImport, err)
	}
	var subs rawSubcollections
	if isObject(row.Subcollections) {
		if err := json.Unmarshal(row.Subcollections, &subs); err != nil {
			return Resolution{}, fmt.Errorf("%w: subcollections: %v", domain.ErrInvalidImport, err)
		}
	}

	res := Resolution{
		Raw: RawNames{
			Company:     rt.company(),
			Guide:       rt.guide(),
			Nationality: string(rt.Nationality),
		},
		Unresolved: []Field{},
		Warnings:   []string{},
	}
	warn := func(field string, err error) {
		res.Warnings = append(res.Warnings, field+": "+err.Error())
	}

	t := domain.Tour{
		Code:       string(rt.Code),
		ClientName: string(rt.ClientName),
		DriverName: string(rt.DriverName),
		Notes:      string(rt.Notes),
	}
	if d, err := parseDate(rt.StartDate); err != nil {
		warn("startDate", err)
	} else if d != nil {
		t.StartDate = *d
	}
	if d, err := parseDate(rt.EndDate); err != nil {
		warn("endDate", err)
	} else {
		t.EndDate = d
	}
	adults, err := parseCount(rt.Adults)
	if err != nil {
		warn("adults", err)
	}
	children, err := parseCount(rt.Children)
	if err != nil {
		warn("children", err)
	}
	if adults != nil {
		t.Adults = *adults
	}
	if children != nil {
		t.Children = *children
	}
	if adults == nil && children == nil {
		total, err := parseCount(rt.TotalGuests)
		if err != nil {
			warn("totalGuests", err)
		} else if total != nil {
			t.Adults = *total
		}
	}

	t.CompanyRef = r.ResolveName(FieldCompany, res.Raw.Company)
	t.GuideRef = r.ResolveName(FieldGuide, res.Raw.Guide)
	t.NationalityRef = r.ResolveName(FieldNationality, res.Raw.Nationality)
	for _, f := range Fields {
		if !refFor(&t, f).Resolved() {
			res.Unresolved = append(res.Unresolved, f)
		}
	}

	t.Destinations = pricedItems("destinations", subs.Destinations, warn)
	t.Expenses = pricedItems("expenses", subs.Expenses, warn)
	t.Meals = pricedItems("meals", subs.Meals, warn)
	t.Allowances = allowances(subs.Allowances, warn)
	t.Shoppings = shoppings(subs.Shoppings, warn)
	t.Diaries = diaries(subs.Diaries, warn)

	t.Normalize()
	res.Tour = t
	return res, nil
}

// ResolveBatch resolves every row of a batch already split by ParseBatch.
// The first structural error aborts the batch.
func (r *Resolver) ResolveBatch(rows []json.RawMessage) ([]Resolution, error) {
	out := make([]Resolution, 0, len(rows))
	for i, raw := range rows {
		res, err := r.Resolve(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func refFor(t *domain.Tour, f Field) *domain.Ref {
	switch f {
	case FieldCompany:
		return &t.CompanyRef
	case FieldGuide:
		return &t.GuideRef
	default:
		return &t.NationalityRef
	}
}

func pricedItems(tab string, rows []rawPriced, warn func(string, error)) []domain.PricedItem {
	out := make([]domain.PricedItem, 0, len(rows))
	for i, r := range rows {
		field := fmt.Sprintf("%s[%d]", tab, i)
		item := domain.PricedItem{Name: string(r.Name)}
		var err error
		if item.Price, err = parseAmount(r.Price); err != nil {
			warn(field+".price", err)
		}
		if item.Date, err = parseDate(r.Date); err != nil {
			warn(field+".date", err)
		}
		if item.Guests, err = parseCount(r.Guests); err != nil {
			warn(field+".guests", err)
		}
		out = append(out, item)
	}
	return out
}

func allowances(rows []rawAllowance, warn func(string, error)) []domain.Allowance {
	out := make([]domain.Allowance, 0, len(rows))
	for i, r := range rows {
		field := fmt.Sprintf("allowances[%d]", i)
		a := domain.Allowance{Name: string(r.Name), Quantity: 1}
		var err error
		if a.Price, err = parseAmount(r.Price); err != nil {
			warn(field+".price", err)
		}
		if q, err := parseCount(r.Quantity); err != nil {
			warn(field+".quantity", err)
		} else if q != nil {
			a.Quantity = *q
		}
		if a.Date, err = parseDate(r.Date); err != nil {
			warn(field+".date", err)
		}
		out = append(out, a)
	}
	return out
}

func shoppings(rows []rawShopping, warn func(string, error)) []domain.Shopping {
	out := make([]domain.Shopping, 0, len(rows))
	for i, r := range rows {
		field := fmt.Sprintf("shoppings[%d]", i)
		s := domain.Shopping{Name: string(r.Name), ShopRef: domain.Ref{NameAtBooking: string(r.Shop)}}
		var err error
		if s.Amount, err = parseAmount(r.Amount); err != nil {
			warn(field+".amount", err)
		}
		if s.Commission, err = parseAmount(r.Commission); err != nil {
			warn(field+".commission", err)
		}
		if s.Date, err = parseDate(r.Date); err != nil {
			warn(field+".date", err)
		}
		out = append(out, s)
	}
	return out
}

func diaries(rows []rawDiary, warn func(string, error)) []domain.Diary {
	out := make([]domain.Diary, 0, len(rows))
	for i, r := range rows {
		d := domain.Diary{TypeRef: domain.Ref{NameAtBooking: string(r.Type)}, Content: string(r.Content)}
		var err error
		if d.Date, err = parseDate(r.Date); err != nil {
			warn(fmt.Sprintf("diaries[%d].date", i), err)
		}
		out = append(out, d)
	}
	return out
}
