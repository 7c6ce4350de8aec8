package api

import (
	"errors"
	"net/http"
)

// HighlightHandler serves the cycle and connection overlay toggles.
type HighlightHandler struct {
	deps Dependencies
}

// NewHighlightHandler creates a new highlight handler.
func NewHighlightHandler(deps Dependencies) *HighlightHandler {
	return &HighlightHandler{deps: deps}
}

type cycleToggleRequest struct {
	Index int `json:"index"`
}

type toggleResponse struct {
	Active bool `json:"active"`
}

// HandleCycle serves POST /highlight/cycle, toggling the overlay for one of
// the fetched clearing cycles by index.
func (h *HighlightHandler) HandleCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req cycleToggleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	active, err := h.deps.ToggleCycleHighlight(req.Index)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}

type connectionToggleRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Equivalent string `json:"equivalent"`

	// Counterparty, when set, re-centers the camera on it after the toggle
	// (browser row-click behavior).
	Counterparty string `json:"counterparty,omitempty"`
}

// HandleConnection serves POST /highlight/connection with toggle semantics.
func (h *HighlightHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req connectionToggleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.From == "" || req.To == "" || req.Equivalent == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing from, to, or equivalent"))
		return
	}

	var active bool
	if req.Counterparty != "" {
		active = h.deps.ClickConnection(req.From, req.To, req.Equivalent, req.Counterparty)
	} else {
		active = h.deps.ToggleConnectionHighlight(req.From, req.To, req.Equivalent)
	}
	writeJSON(w, http.StatusOK, toggleResponse{Active: active})
}
