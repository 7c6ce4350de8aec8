// Package api declares HTTP contracts and route registration for the graph
// console backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/creditmesh/netview/internal/browse"
	"github.com/creditmesh/netview/internal/domain/analytics"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/engine"
	"github.com/creditmesh/netview/internal/highlight"
	"github.com/creditmesh/netview/internal/prefs"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps the
// handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	View() engine.GraphView
	Reload(ctx context.Context) error

	SetFilters(ctx context.Context, u engine.FilterUpdate) error
	SetFocus(ctx context.Context, root string, depth int) error
	ClearFocus(ctx context.Context) error
	ForceRender(ctx context.Context)

	SelectNode(ctx context.Context, pid string) error
	ClearSelection(ctx context.Context)
	Cycles() []model.ClearingCycle

	Search(ctx context.Context, query string) []string
	FindAndFlash(ctx context.Context, query string) []string
	Highlights() highlight.State
	ToggleCycleHighlight(idx int) (bool, error)
	ToggleConnectionHighlight(from, to, equivalent string) bool
	ClickConnection(from, to, equivalent, counterparty string) bool

	Analytics() (analytics.Report, error)
	ConnectionsPage(dir browse.Direction) (browse.Page, error)
	SetConnectionsPage(dir browse.Direction, page int)

	Prefs(ctx context.Context) prefs.Preferences
	ApplyPrefs(ctx context.Context, p prefs.Preferences) error

	Stats() map[string]interface{}
}

// Server wires HTTP routes for the console API.
type Server struct {
	healthHandler      *HealthHandler
	graphHandler       *GraphHandler
	selectionHandler   *SelectionHandler
	searchHandler      *SearchHandler
	highlightHandler   *HighlightHandler
	analyticsHandler   *AnalyticsHandler
	connectionsHandler *ConnectionsHandler
	prefsHandler       *PrefsHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		graphHandler:       NewGraphHandler(deps),
		selectionHandler:   NewSelectionHandler(deps),
		searchHandler:      NewSearchHandler(deps),
		highlightHandler:   NewHighlightHandler(deps),
		analyticsHandler:   NewAnalyticsHandler(deps),
		connectionsHandler: NewConnectionsHandler(deps),
		prefsHandler:       NewPrefsHandler(deps),
		statsHandler:       NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/graph", MetricsMiddleware(s.graphHandler.HandleGraph, "graph"))
	mux.HandleFunc("/graph/filters", MetricsMiddleware(s.graphHandler.HandleFilters, "graph_filters"))
	mux.HandleFunc("/graph/focus", MetricsMiddleware(s.graphHandler.HandleFocus, "graph_focus"))
	mux.HandleFunc("/graph/render", MetricsMiddleware(s.graphHandler.HandleRender, "graph_render"))
	mux.HandleFunc("/selection/cycles", MetricsMiddleware(s.selectionHandler.HandleCycles, "selection_cycles"))
	mux.HandleFunc("/selection/", MetricsMiddleware(s.selectionHandler.HandleSelect, "selection"))
	mux.HandleFunc("/selection", MetricsMiddleware(s.selectionHandler.HandleClear, "selection"))
	mux.HandleFunc("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("/search/find", MetricsMiddleware(s.searchHandler.HandleFind, "search_find"))
	mux.HandleFunc("/highlight/cycle", MetricsMiddleware(s.highlightHandler.HandleCycle, "highlight_cycle"))
	mux.HandleFunc("/highlight/connection", MetricsMiddleware(s.highlightHandler.HandleConnection, "highlight_connection"))
	mux.HandleFunc("/analytics", MetricsMiddleware(s.analyticsHandler.HandleAnalytics, "analytics"))
	mux.HandleFunc("/connections", MetricsMiddleware(s.connectionsHandler.HandleConnections, "connections"))
	mux.HandleFunc("/prefs", MetricsMiddleware(s.prefsHandler.HandlePrefs, "prefs"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError translates engine sentinels to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownPID):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, engine.ErrNoSelection):
		writeError(w, http.StatusConflict, "no_selection", err)
	case errors.Is(err, engine.ErrLoading):
		writeError(w, http.StatusServiceUnavailable, "loading", err)
	case errors.Is(err, engine.ErrCycleIndex):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, engine.ErrLoadSnapshot):
		writeError(w, http.StatusBadGateway, "upstream", err)
	case errors.Is(err, engine.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
