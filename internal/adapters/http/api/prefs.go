package api

import (
	"net/http"

	"github.com/creditmesh/netview/internal/prefs"
)

// PrefsHandler serves persisted UI preferences.
type PrefsHandler struct {
	deps Dependencies
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(deps Dependencies) *PrefsHandler {
	return &PrefsHandler{deps: deps}
}

// HandlePrefs serves GET and PUT /prefs.
func (h *PrefsHandler) HandlePrefs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Prefs(r.Context()))
	case http.MethodPut:
		var p prefs.Preferences
		if err := decodeBody(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := h.deps.ApplyPrefs(r.Context(), p); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.deps.Prefs(r.Context()))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
