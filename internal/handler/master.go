package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// MasterRequest is the body of POST /master/{kind} and PUT /master/{kind}/{id}.
type MasterRequest struct {
	Name       string            `json:"name"`
	Code       string            `json:"code,omitempty"`
	Status     string            `json:"status,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// MasterStatusRequest is the body of POST /master/{kind}/{id}/status.
type MasterStatusRequest struct {
	Status string `json:"status"`
}

// Master is the JSON representation of a master entity.
type Master struct {
	Id             openapi_types.UUID `json:"id"`
	Kind           string             `json:"kind"`
	Name           string             `json:"name"`
	Code           *string            `json:"code,omitempty"`
	Status         string             `json:"status"`
	SearchKeywords []string           `json:"searchKeywords"`
	Attributes     map[string]string  `json:"attributes"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// MasterList is one page of master entities.
type MasterList struct {
	Data       []Master   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListMaster handles GET /master/{kind}.
// Supports ?q= (accent-insensitive keyword prefix), ?status=, ?page= and ?limit=.
func (s *Server) ListMaster(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	params, ok := pageParams(w, r)
	if !ok {
		return
	}
	filter := domain.MasterFilter{
		Query:  r.URL.Query().Get("q"),
		Status: domain.Status(r.URL.Query().Get("status")),
	}

	entities, total, err := s.masters.List(r.Context(), kind, filter, params)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	data := make([]Master, len(entities))
	for i, e := range entities {
		data[i] = masterToResponse(e)
	}
	writeJSON(w, http.StatusOK, MasterList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// CreateMaster handles POST /master/{kind}.
func (s *Server) CreateMaster(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	var body MasterRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	created, err := s.masters.Create(r.Context(), requestToMaster(kind, body))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, masterToResponse(created))
}

// GetMaster handles GET /master/{kind}/{id}.
func (s *Server) GetMaster(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e, err := s.masters.GetByID(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err, string(kind)+" entry not found")
		return
	}
	writeJSON(w, http.StatusOK, masterToResponse(e))
}

// UpdateMaster handles PUT /master/{kind}/{id}.
// An omitted status keeps the entity active.
func (s *Server) UpdateMaster(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body MasterRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	e := requestToMaster(kind, body)
	e.ID = id
	if e.Status == "" {
		e.Status = domain.StatusActive
	}
	updated, err := s.masters.Update(r.Context(), e)
	if err != nil {
		writeError(w, r, err, string(kind)+" entry not found")
		return
	}
	writeJSON(w, http.StatusOK, masterToResponse(updated))
}

// SetMasterStatus handles POST /master/{kind}/{id}/status.
func (s *Server) SetMasterStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body MasterStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBodyError(w, r, err)
		return
	}

	updated, err := s.masters.SetStatus(r.Context(), kind, id, domain.Status(body.Status))
	if err != nil {
		writeError(w, r, err, string(kind)+" entry not found")
		return
	}
	writeJSON(w, http.StatusOK, masterToResponse(updated))
}

// DeleteMaster handles DELETE /master/{kind}/{id}.
func (s *Server) DeleteMaster(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.masters.Delete(r.Context(), kind, id); err != nil {
		writeError(w, r, err, string(kind)+" entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// pathKind parses the {kind} URL parameter. Unknown kinds are a 404: the
// collection does not exist.
func pathKind(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody(unwrapMessage(err)))
		return "", false
	}
	return kind, true
}

func requestToMaster(kind domain.Kind, body MasterRequest) domain.MasterEntity {
	return domain.MasterEntity{
		Kind:       kind,
		Name:       body.Name,
		Code:       body.Code,
		Status:     domain.Status(body.Status),
		Attributes: body.Attributes,
	}
}

func masterToResponse(e domain.MasterEntity) Master {
	resp := Master{
		Id:             e.ID,
		Kind:           string(e.Kind),
		Name:           e.Name,
		Status:         string(e.Status),
		SearchKeywords: e.SearchKeywords,
		Attributes:     e.Attributes,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.Code != "" {
		resp.Code = &e.Code
	}
	if resp.SearchKeywords == nil {
		resp.SearchKeywords = []string{}
	}
	if resp.Attributes == nil {
		resp.Attributes = map[string]string{}
	}
	return resp
}
