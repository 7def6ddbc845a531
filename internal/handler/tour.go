package handler

import (
	"bytes"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// TourRequest is the body of POST /tours and PUT /tours/{id}.
// TotalGuests is derived and therefore not accepted.
type TourRequest struct {
	Code           string              `json:"code"`
	ClientName     string              `json:"clientName,omitempty"`
	StartDate      openapi_types.Date  `json:"startDate"`
	EndDate        *openapi_types.Date `json:"endDate,omitempty"`
	Adults         int                 `json:"adults"`
	Children       int                 `json:"children"`
	CompanyRef     domain.Ref          `json:"companyRef"`
	GuideRef       domain.Ref          `json:"guideRef"`
	NationalityRef domain.Ref          `json:"nationalityRef"`
	DriverName     string              `json:"driverName,omitempty"`
	Notes          string              `json:"notes,omitempty"`

	Destinations []domain.PricedItem `json:"destinations"`
	Expenses     []domain.PricedItem `json:"expenses"`
	Meals        []domain.PricedItem `json:"meals"`
	Allowances   []domain.Allowance  `json:"allowances"`
	Shoppings    []domain.Shopping   `json:"shoppings"`
	Diaries      []domain.Diary      `json:"diaries"`
}

// TourPatchRequest is the body of PATCH /tours/{id}. Omitted fields are left
// unchanged; a present collection replaces the stored one. Set clearEndDate
// to remove the end date.
type TourPatchRequest struct {
	Code           *string             `json:"code,omitempty"`
	ClientName     *string             `json:"clientName,omitempty"`
	StartDate      *openapi_types.Date `json:"startDate,omitempty"`
	EndDate        *openapi_types.Date `json:"endDate,omitempty"`
	ClearEndDate   bool                `json:"clearEndDate,omitempty"`
	Adults         *int                `json:"adults,omitempty"`
	Children       *int                `json:"children,omitempty"`
	CompanyRef     *domain.Ref         `json:"companyRef,omitempty"`
	GuideRef       *domain.Ref         `json:"guideRef,omitempty"`
	NationalityRef *domain.Ref         `json:"nationalityRef,omitempty"`
	DriverName     *string             `json:"driverName,omitempty"`
	Notes          *string             `json:"notes,omitempty"`

	Destinations *[]domain.PricedItem `json:"destinations,omitempty"`
	Expenses     *[]domain.PricedItem `json:"expenses,omitempty"`
	Meals        *[]domain.PricedItem `json:"meals,omitempty"`
	Allowances   *[]domain.Allowance  `json:"allowances,omitempty"`
	Shoppings    *[]domain.Shopping   `json:"shoppings,omitempty"`
	Diaries      *[]domain.Diary      `json:"diaries,omitempty"`
}

// Tour is the JSON representation of a tour.
type Tour struct {
	Id             openapi_types.UUID  `json:"id"`
	Code           string              `json:"code"`
	ClientName     *string             `json:"clientName,omitempty"`
	StartDate      openapi_types.Date  `json:"startDate"`
	EndDate        *openapi_types.Date `json:"endDate,omitempty"`
	Adults         int                 `json:"adults"`
	Children       int                 `json:"children"`
	TotalGuests    int                 `json:"totalGuests"`
	CompanyRef     domain.Ref          `json:"companyRef"`
	GuideRef       domain.Ref          `json:"guideRef"`
	NationalityRef domain.Ref          `json:"nationalityRef"`
	DriverName     *string             `json:"driverName,omitempty"`
	Notes          *string             `json:"notes,omitempty"`

	Destinations []domain.PricedItem `json:"destinations"`
	Expenses     []domain.PricedItem `json:"expenses"`
	Meals        []domain.PricedItem `json:"meals"`
	Allowances   []domain.Allowance  `json:"allowances"`
	Shoppings    []domain.Shopping   `json:"shoppings"`
	Diaries      []domain.Diary      `json:"diaries"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TourList is one page of tours.
type TourList struct {
	Data       []Tour     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TourTotals is the body of GET /tours/{id}/totals.
type TourTotals struct {
	TourId       openapi_types.UUID `json:"tourId"`
	TotalGuests  int                `json:"totalGuests"`
	Destinations decimal.Decimal    `json:"destinations"`
	Expenses     decimal.Decimal    `json:"expenses"`
	Meals        decimal.Decimal    `json:"meals"`
	Allowances   decimal.Decimal    `json:"allowances"`
	Shopping     decimal.Decimal    `json:"shopping"`
	Commission   decimal.Decimal    `json:"commission"`
	Grand        decimal.Decimal    `json:"grand"`
}

// CreateTour handles POST /tours.
func (s *Server) CreateTour(w http.ResponseWriter, r *http.Request) {
	var body TourRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	created, err := s.tours.Create(r.Context(), requestToTour(body))
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	writeJSON(w, http.StatusCreated, tourToResponse(created))
}

// ListTours handles GET /tours.
// Supports ?q= (code or client name), ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTours(w http.ResponseWriter, r *http.Request) {
	params, ok := pageParams(w, r)
	if !ok {
		return
	}
	tours, total, err := s.tours.ListPaged(r.Context(), domain.TourFilter{Query: r.URL.Query().Get("q")}, params)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	data := make([]Tour, len(tours))
	for i, t := range tours {
		data[i] = tourToResponse(t)
	}
	writeJSON(w, http.StatusOK, TourList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetTour handles GET /tours/{id}.
func (s *Server) GetTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tour, err := s.tours.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	writeJSON(w, http.StatusOK, tourToResponse(tour))
}

// UpdateTour handles PUT /tours/{id}.
func (s *Server) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body TourRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	tour := requestToTour(body)
	tour.ID = id
	updated, err := s.tours.Update(r.Context(), tour)
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	writeJSON(w, http.StatusOK, tourToResponse(updated))
}

// PatchTour handles PATCH /tours/{id}.
func (s *Server) PatchTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body TourPatchRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	updated, err := s.tours.Patch(r.Context(), id, requestToPatch(body))
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	writeJSON(w, http.StatusOK, tourToResponse(updated))
}

// DeleteTour handles DELETE /tours/{id}.
func (s *Server) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tours.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTourTotals handles GET /tours/{id}/totals.
func (s *Server) GetTourTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tour, sum, err := s.tours.Totals(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}
	writeJSON(w, http.StatusOK, TourTotals{
		TourId:       tour.ID,
		TotalGuests:  tour.Adults + tour.Children,
		Destinations: sum.Destinations,
		Expenses:     sum.Expenses,
		Meals:        sum.Meals,
		Allowances:   sum.Allowances,
		Shopping:     sum.Shopping,
		Commission:   sum.Commission,
		Grand:        sum.Grand,
	})
}

// ExportTour handles GET /tours/{id}/export.
// ?format=xlsx (default) returns a workbook; ?format=txt a plain-text summary.
func (s *Server) ExportTour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		tour        domain.Tour
		err         error
		contentType string
		ext         string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		tour, err = s.export.TourXLSX(r.Context(), id, &buf)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	case "txt":
		tour, err = s.export.TourText(r.Context(), id, &buf)
		contentType = "text/plain; charset=utf-8"
		ext = "txt"
	default:
		writeJSON(w, http.StatusBadRequest, requestBody("format must be xlsx or txt"))
		return
	}
	if err != nil {
		writeError(w, r, err, "tour not found")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(tour.Code, ext))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}

// --- mapping helpers --------------------------------------------------------

func requestToTour(body TourRequest) domain.Tour {
	t := domain.Tour{
		Code:           body.Code,
		ClientName:     body.ClientName,
		StartDate:      body.StartDate.Time,
		Adults:         body.Adults,
		Children:       body.Children,
		CompanyRef:     body.CompanyRef,
		GuideRef:       body.GuideRef,
		NationalityRef: body.NationalityRef,
		DriverName:     body.DriverName,
		Notes:          body.Notes,
		Destinations:   body.Destinations,
		Expenses:       body.Expenses,
		Meals:          body.Meals,
		Allowances:     body.Allowances,
		Shoppings:      body.Shoppings,
		Diaries:        body.Diaries,
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		t.EndDate = &ed
	}
	return t
}

func requestToPatch(body TourPatchRequest) domain.TourPatch {
	p := domain.TourPatch{
		Code:           body.Code,
		ClientName:     body.ClientName,
		ClearEndDate:   body.ClearEndDate,
		Adults:         body.Adults,
		Children:       body.Children,
		CompanyRef:     body.CompanyRef,
		GuideRef:       body.GuideRef,
		NationalityRef: body.NationalityRef,
		DriverName:     body.DriverName,
		Notes:          body.Notes,
		Destinations:   body.Destinations,
		Expenses:       body.Expenses,
		Meals:          body.Meals,
		Allowances:     body.Allowances,
		Shoppings:      body.Shoppings,
		Diaries:        body.Diaries,
	}
	if body.StartDate != nil {
		sd := body.StartDate.Time
		p.StartDate = &sd
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		p.EndDate = &ed
	}
	return p
}

// tourToResponse converts a domain.Tour into its JSON representation.
func tourToResponse(t domain.Tour) Tour {
	t.Normalize()
	resp := Tour{
		Id:             t.ID,
		Code:           t.Code,
		StartDate:      openapi_types.Date{Time: t.StartDate},
		Adults:         t.Adults,
		Children:       t.Children,
		TotalGuests:    t.TotalGuests,
		CompanyRef:     t.CompanyRef,
		GuideRef:       t.GuideRef,
		NationalityRef: t.NationalityRef,
		Destinations:   t.Destinations,
		Expenses:       t.Expenses,
		Meals:          t.Meals,
		Allowances:     t.Allowances,
		Shoppings:      t.Shoppings,
		Diaries:        t.Diaries,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.EndDate != nil {
		ed := openapi_types.Date{Time: *t.EndDate}
		resp.EndDate = &ed
	}
	if t.ClientName != "" {
		resp.ClientName = &t.ClientName
	}
	if t.DriverName != "" {
		resp.DriverName = &t.DriverName
	}
	if t.Notes != "" {
		resp.Notes = &t.Notes
	}
	return resp
}
