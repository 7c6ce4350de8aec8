package api

import (
	"errors"
	"net/http"
	"strings"
)

// SelectionHandler serves node selection and its clearing cycles.
type SelectionHandler struct {
	deps Dependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

// HandleSelect serves POST /selection/{pid}.
func (h *SelectionHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	pid := strings.TrimPrefix(r.URL.Path, "/selection/")
	if pid == "" || strings.Contains(pid, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing pid"))
		return
	}

	if err := h.deps.SelectNode(r.Context(), pid); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View())
}

// HandleClear serves DELETE /selection.
func (h *SelectionHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	h.deps.ClearSelection(r.Context())
	writeJSON(w, http.StatusOK, h.deps.View())
}

// HandleCycles serves GET /selection/cycles, the clearing cycles fetched for
// the current selection.
func (h *SelectionHandler) HandleCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cycles": h.deps.Cycles()})
}
