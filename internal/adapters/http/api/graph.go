package api

import (
	"errors"
	"net/http"

	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/engine"
)

// GraphHandler serves the rendered graph and its filter and focus mutations.
type GraphHandler struct {
	deps Dependencies
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(deps Dependencies) *GraphHandler {
	return &GraphHandler{deps: deps}
}

// HandleGraph serves GET /graph.
func (h *GraphHandler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View())
}

// filtersRequest mirrors the PUT /graph/filters body. Absent fields keep
// their current value; empty lists clear the corresponding constraint.
type filtersRequest struct {
	Equivalent   *string   `json:"equivalent,omitempty"`
	Statuses     *[]string `json:"statuses,omitempty"`
	Types        *[]string `json:"types,omitempty"`
	MinDegree    *int      `json:"min_degree,omitempty"`
	HideIsolates *bool     `json:"hide_isolates,omitempty"`
	Threshold    *string   `json:"threshold,omitempty"`
}

// HandleFilters serves PUT /graph/filters.
func (h *GraphHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req filtersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	u := engine.FilterUpdate{
		Equivalent:   req.Equivalent,
		MinDegree:    req.MinDegree,
		HideIsolates: req.HideIsolates,
		Threshold:    req.Threshold,
	}
	if req.Statuses != nil {
		u.Statuses = make([]model.TrustlineStatus, 0, len(*req.Statuses))
		for _, s := range *req.Statuses {
			u.Statuses = append(u.Statuses, model.TrustlineStatus(s))
		}
	}
	if req.Types != nil {
		u.Types = make([]model.ParticipantType, 0, len(*req.Types))
		for _, t := range *req.Types {
			u.Types = append(u.Types, model.ParticipantType(t))
		}
	}

	if err := h.deps.SetFilters(r.Context(), u); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View())
}

type focusRequest struct {
	RootPID string `json:"root_pid"`
	Depth   int    `json:"depth"`
}

// HandleFocus serves PUT and DELETE /graph/focus.
func (h *GraphHandler) HandleFocus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		var req focusRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if req.RootPID == "" {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing root_pid"))
			return
		}
		if err := h.deps.SetFocus(r.Context(), req.RootPID, req.Depth); err != nil {
			writeEngineError(w, err)
			return
		}
	case http.MethodDelete:
		if err := h.deps.ClearFocus(r.Context()); err != nil {
			writeEngineError(w, err)
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View())
}

// HandleRender serves POST /graph/render, the explicit opt-in when an
// oversized result deferred auto-rendering.
func (h *GraphHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	h.deps.ForceRender(r.Context())
	writeJSON(w, http.StatusOK, h.deps.View())
}
