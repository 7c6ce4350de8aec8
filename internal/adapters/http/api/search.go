package api

import (
	"errors"
	"net/http"
)

// SearchHandler serves the search overlay endpoints.
type SearchHandler struct {
	deps Dependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps Dependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

type searchResponse struct {
	Query string   `json:"query"`
	Hits  []string `json:"hits"`
}

// HandleSearch serves GET /search?q=. The overlay persists while the query is
// edited; an empty q clears it.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	query := r.URL.Query().Get("q")
	hits := h.deps.Search(r.Context(), query)
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Hits: hits})
}

type findRequest struct {
	Query string `json:"query"`
}

// HandleFind serves POST /search/find: activate the overlay, center on the
// first hit, and auto-clear after a short delay.
func (h *SearchHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req findRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing query"))
		return
	}

	hits := h.deps.FindAndFlash(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Hits: hits})
}
