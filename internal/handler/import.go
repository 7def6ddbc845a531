package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/importer"
	"github.com/tourdesk/tourdesk/internal/service"
)

// SessionHeader carries the import session id. Requests sharing an id reuse
// the master data loaded for the first of them.
const SessionHeader = "X-Import-Session"

// ImportRow is one resolved import row. Tour uses the same shape as the
// /tours responses so the review screen can post it back unchanged.
type ImportRow struct {
	Tour       Tour              `json:"tour"`
	Raw        importer.RawNames `json:"raw"`
	Unresolved []importer.Field  `json:"unresolved"`
	Warnings   []string          `json:"warnings"`
}

// ImportPreview is the body of POST /imports/preview: one row per input row,
// in input order.
type ImportPreview struct {
	Rows       []ImportRow `json:"rows"`
	Unresolved int         `json:"unresolved"`
	Ready      bool        `json:"ready"`
}

// ImportConfirmRequest is the body of POST /imports/confirm: the reviewed
// tours, usually the preview rows after the operator fixed their references.
type ImportConfirmRequest struct {
	Tours []TourRequest `json:"tours"`
}

// ImportConfirmResponse lists the tours created. When creation stops part
// way, Error describes the failure and Created holds the tours saved before
// it.
type ImportConfirmResponse struct {
	Created []Tour       `json:"created"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ImportBackfillRequest is the body of POST /imports/backfill. It points the
// reviewed tours at an existing master entity, typically one just created
// from the review screen. Row (0-based) limits the change to one tour;
// without it every unresolved tour whose name matches the entity changes.
type ImportBackfillRequest struct {
	Tours    []TourRequest      `json:"tours"`
	Field    string             `json:"field"`
	EntityID openapi_types.UUID `json:"entityId"`
	Row      *int               `json:"row,omitempty"`
}

// ImportBackfillResponse returns the updated tours.
type ImportBackfillResponse struct {
	Tours   []Tour `json:"tours"`
	Changed int    `json:"changed"`
	Ready   bool   `json:"ready"`
}

// PreviewImport handles POST /imports/preview.
// The body is the raw import file: a JSON array of {tour, subcollections}.
func (s *Server) PreviewImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, r, err)
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, requestBody("request body is required"))
		return
	}

	resolutions, err := s.imports.Preview(r.Context(), r.Header.Get(SessionHeader), data)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	resp := ImportPreview{Rows: make([]ImportRow, len(resolutions))}
	for i, res := range resolutions {
		resp.Rows[i] = ImportRow{
			Tour:       tourToResponse(res.Tour),
			Raw:        res.Raw,
			Unresolved: res.Unresolved,
			Warnings:   res.Warnings,
		}
		if len(res.Unresolved) > 0 {
			resp.Unresolved++
		}
	}
	resp.Ready = resp.Unresolved == 0
	writeJSON(w, http.StatusOK, resp)
}

// BackfillImport handles POST /imports/backfill.
func (s *Server) BackfillImport(w http.ResponseWriter, r *http.Request) {
	var body ImportBackfillRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}
	field, err := importer.ParseField(body.Field)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}
	if len(body.Tours) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(errors.New("tours must not be empty")))
		return
	}

	tours, changed, err := s.imports.Backfill(r.Context(), service.BackfillRequest{
		Tours:    requestsToTours(body.Tours),
		Field:    field,
		EntityID: body.EntityID,
		Row:      body.Row,
	})
	if err != nil {
		writeError(w, r, err, fmt.Sprintf("%s entry not found", field.Kind()))
		return
	}

	resp := ImportBackfillResponse{Tours: make([]Tour, len(tours)), Changed: changed}
	resp.Ready = importer.NewReviewFromTours(tours).Ready()
	for i, t := range tours {
		resp.Tours[i] = tourToResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ConfirmImport handles POST /imports/confirm.
func (s *Server) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	var body ImportConfirmRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}
	if len(body.Tours) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(errors.New("tours must not be empty")))
		return
	}

	created, err := s.imports.Confirm(r.Context(), r.Header.Get(SessionHeader), requestsToTours(body.Tours))
	resp := ImportConfirmResponse{Created: make([]Tour, len(created))}
	for i, t := range created {
		resp.Created[i] = tourToResponse(t)
	}
	if err != nil {
		if len(created) == 0 {
			writeError(w, r, err, "")
			return
		}
		status, errBody := errorBody(r, err, "")
		resp.Error = &errBody.Error
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func requestsToTours(reqs []TourRequest) []domain.Tour {
	tours := make([]domain.Tour, len(reqs))
	for i, req := range reqs {
		tours[i] = requestToTour(req)
	}
	return tours
}
