package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/creditmesh/netview/internal/browse"
)

// ConnectionsHandler serves the paginated connection browser.
type ConnectionsHandler struct {
	deps Dependencies
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(deps Dependencies) *ConnectionsHandler {
	return &ConnectionsHandler{deps: deps}
}

// HandleConnections serves GET /connections?direction=in|out&page=N. Passing
// page moves that direction's cursor first; a page the list cannot support
// resets the cursor to page 1.
func (h *ConnectionsHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var dir browse.Direction
	switch r.URL.Query().Get("direction") {
	case "in":
		dir = browse.Incoming
	case "out":
		dir = browse.Outgoing
	default:
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("direction must be in or out"))
		return
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("page must be an integer"))
			return
		}
		h.deps.SetConnectionsPage(dir, page)
	}

	page, err := h.deps.ConnectionsPage(dir)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
