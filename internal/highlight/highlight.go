// Package highlight maintains the three independent render overlays: search
// hits, the active clearing cycle, and the active connection. Each overlay is
// a small state machine with states inactive and active(key).
package highlight

import (
	"sort"
	"strings"
	"sync"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
)

// Overlay kinds.
const (
	KindSearch     = "search-hit"
	KindCycle      = "cycle-highlight"
	KindConnection = "connection-highlight"
)

// DefaultMaxSearchHits caps how many nodes a search overlay lights up.
const DefaultMaxSearchHits = 40

// exactPIDPrefix marks a query as an exact-pid lookup.
const exactPIDPrefix = "pid:"

// overlay is one toggleable state machine.
type overlay struct {
	active bool
	key    string
}

// activate moves to active(key) unconditionally.
func (o *overlay) activate(key string) {
	o.active = true
	o.key = key
}

// toggle re-activating the active key deactivates it; any other key activates.
// Returns whether the overlay is active afterwards.
func (o *overlay) toggle(key string) bool {
	if o.active && o.key == key {
		o.clear()
		return false
	}
	o.activate(key)
	return true
}

func (o *overlay) clear() {
	o.active = false
	o.key = ""
}

// State is a read snapshot of all three overlays.
type State struct {
	SearchActive bool     `json:"search_active"`
	SearchKey    string   `json:"search_key"`
	SearchHits   []string `json:"search_hits"`

	CycleActive bool     `json:"cycle_active"`
	CycleKey    string   `json:"cycle_key"`
	CycleEdges  []string `json:"cycle_edges"`

	ConnectionActive    bool     `json:"connection_active"`
	ConnectionKey       string   `json:"connection_key"`
	ConnectionEdge      string   `json:"connection_edge"`
	ConnectionEndpoints []string `json:"connection_endpoints"`
}

// Controller owns the three overlays.
type Controller struct {
	mu sync.Mutex

	search     overlay
	cycle      overlay
	connection overlay

	searchHits []string
	cycleEdges []string
	connEdge   string
	connEnds   []string

	maxHits int
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithMaxSearchHits caps the search overlay size.
func WithMaxSearchHits(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxHits = n
		}
	}
}

// NewController creates a highlight controller with configuration options.
func NewController(opts ...Option) *Controller {
	c := &Controller{maxHits: DefaultMaxSearchHits}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchHits matches a free-text query against node pids and display names.
// A "pid:<value>" query matches that exact pid only. Hits are capped and
// returned in node order.
func (c *Controller) SearchHits(nodes []elements.Node, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if exact, ok := strings.CutPrefix(query, exactPIDPrefix); ok {
		exact = strings.TrimSpace(exact)
		for _, n := range nodes {
			if n.ID == exact {
				return []string{n.ID}
			}
		}
		return nil
	}

	needle := strings.ToLower(query)
	var hits []string
	for _, n := range nodes {
		if len(hits) >= c.maxHits {
			break
		}
		if strings.Contains(strings.ToLower(n.ID), needle) ||
			strings.Contains(strings.ToLower(n.DisplayName), needle) {
			hits = append(hits, n.ID)
		}
	}
	return hits
}

// ActivateSearch lights up the given hits under the query key. An empty hit
// set still activates, rendering as "no matches" rather than clearing the
// overlay (the query reflects live user intent).
func (c *Controller) ActivateSearch(query string, hits []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search.activate(query)
	c.searchHits = append([]string(nil), hits...)
}

// ClearSearch deactivates the search overlay.
func (c *Controller) ClearSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search.clear()
	c.searchHits = nil
}

// CycleKey builds the overlay key for a clearing cycle: the ordered
// concatenation of equivalent:debtor->creditor per leg.
func CycleKey(cycle model.ClearingCycle) string {
	parts := make([]string, len(cycle.Legs))
	for i, leg := range cycle.Legs {
		parts[i] = leg.Equivalent + ":" + leg.Debtor + "->" + leg.Creditor
	}
	return strings.Join(parts, ";")
}

// cycleEdgeIDs maps each debt leg onto its trustline representation. Debts run
// debtor->creditor; the trustline runs creditor->debtor, so each leg is
// direction-inverted before matching against rendered edges.
func cycleEdgeIDs(cycle model.ClearingCycle, rendered []elements.Edge) []string {
	byID := make(map[string]bool, len(rendered))
	for _, e := range rendered {
		byID[e.ID] = true
	}

	var ids []string
	for _, leg := range cycle.Legs {
		id := leg.Equivalent + "|" + leg.Creditor + "->" + leg.Debtor
		if byID[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// ToggleCycle toggles the cycle overlay for the given cycle against the
// rendered edge set. Returns whether the overlay is active afterwards.
func (c *Controller) ToggleCycle(cycle model.ClearingCycle, rendered []elements.Edge) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.cycle.toggle(CycleKey(cycle))
	if active {
		c.cycleEdges = cycleEdgeIDs(cycle, rendered)
	} else {
		c.cycleEdges = nil
	}
	return active
}

// ConnectionKey builds the overlay key for one trustline connection.
func ConnectionKey(from, to, equivalent string) string {
	return equivalent + "|" + from + "->" + to
}

// ToggleConnection toggles the connection overlay for the (from, to,
// equivalent) trustline. Returns whether the overlay is active afterwards.
func (c *Controller) ToggleConnection(from, to, equivalent string, rendered []elements.Edge) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ConnectionKey(from, to, equivalent)
	active := c.connection.toggle(key)
	if !active {
		c.connEdge = ""
		c.connEnds = nil
		return false
	}

	c.connEdge = ""
	c.connEnds = nil
	for _, e := range rendered {
		if e.ID == key {
			c.connEdge = e.ID
			c.connEnds = []string{e.Source, e.Target}
			break
		}
	}
	return true
}

// OnSelectionChanged clears cycle and connection overlays (they reference
// rendered edges tied to the previous selection) but never the search overlay.
func (c *Controller) OnSelectionChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle.clear()
	c.cycleEdges = nil
	c.connection.clear()
	c.connEdge = ""
	c.connEnds = nil
}

// OnRebuild clears overlays invalidated by a full graph rebuild; search
// survives because it reflects independent user intent.
func (c *Controller) OnRebuild() {
	c.OnSelectionChanged()
}

// Snapshot returns a copy of the full overlay state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		SearchActive:     c.search.active,
		SearchKey:        c.search.key,
		CycleActive:      c.cycle.active,
		CycleKey:         c.cycle.key,
		ConnectionActive: c.connection.active,
		ConnectionKey:    c.connection.key,
		ConnectionEdge:   c.connEdge,
	}
	st.SearchHits = append([]string(nil), c.searchHits...)
	st.CycleEdges = append([]string(nil), c.cycleEdges...)
	st.ConnectionEndpoints = append([]string(nil), c.connEnds...)
	sort.Strings(st.ConnectionEndpoints)
	return st
}
