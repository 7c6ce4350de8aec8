package engine

import (
	"sort"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/highlight"
	"github.com/creditmesh/netview/internal/render"
)

// FocusView describes the active focus mode, if any.
type FocusView struct {
	Enabled bool   `json:"enabled"`
	RootPID string `json:"root_pid,omitempty"`
	Depth   int    `json:"depth,omitempty"`
}

// FilterView is the externally visible filter configuration. Empty status or
// type lists mean "no constraint".
type FilterView struct {
	Equivalent   string   `json:"equivalent"`
	Statuses     []string `json:"statuses"`
	Types        []string `json:"types"`
	MinDegree    int      `json:"min_degree"`
	HideIsolates bool     `json:"hide_isolates"`
	Threshold    string   `json:"threshold"`
}

// GraphView is a consistent read snapshot of the rendered graph and its
// surrounding state, taken under the controller lock.
type GraphView struct {
	Phase Phase  `json:"phase"`
	Error string `json:"error,omitempty"`

	Nodes []elements.Node `json:"nodes,omitempty"`
	Edges []elements.Edge `json:"edges,omitempty"`

	// Deferred render bookkeeping: when the result exceeds the caps the
	// element lists are withheld and only the counts are reported.
	Deferred  bool `json:"deferred"`
	NodeCount int  `json:"node_count"`
	EdgeCount int  `json:"edge_count"`
	NodeCap   int  `json:"node_cap"`
	EdgeCap   int  `json:"edge_cap"`

	Filters   FilterView `json:"filters"`
	Focus     FocusView  `json:"focus"`
	Selection string     `json:"selection,omitempty"`

	Zoom          float64            `json:"zoom"`
	Style         render.StyleValues `json:"style"`
	VisibleLabels map[string]string  `json:"visible_labels,omitempty"`

	Highlight highlight.State `json:"highlight"`
}

// View assembles the full graph view for the current state.
func (c *Controller) View() GraphView {
	c.mu.Lock()

	v := GraphView{
		Phase:     c.phase,
		Deferred:  c.deferred,
		NodeCount: len(c.nodes),
		EdgeCount: len(c.edges),
		NodeCap:   c.nodeCap,
		EdgeCap:   c.edgeCap,
		Selection: c.selection,
		Filters:   c.filterView(),
		Focus: FocusView{
			Enabled: c.focus.Enabled,
			RootPID: c.focus.RootPID,
			Depth:   c.focus.Depth,
		},
	}
	if c.loadErr != nil {
		v.Error = c.loadErr.Error()
	}
	if !c.deferred {
		v.Nodes = append([]elements.Node(nil), c.nodes...)
		v.Edges = append([]elements.Edge(nil), c.edges...)
	}
	c.mu.Unlock()

	v.Zoom = c.rend.Zoom()
	v.Style = c.rend.CurrentStyle()
	v.VisibleLabels = c.rend.VisibleLabels()
	v.Highlight = c.hl.Snapshot()
	return v
}

// Filters returns the externally visible filter configuration.
func (c *Controller) Filters() FilterView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterView()
}

func (c *Controller) filterView() FilterView {
	v := FilterView{
		Equivalent:   c.fcfg.Equivalent,
		Statuses:     []string{},
		Types:        []string{},
		MinDegree:    c.fcfg.MinDegree,
		HideIsolates: c.fcfg.HideIsolates,
		Threshold:    c.threshold,
	}
	for s := range c.fcfg.Statuses {
		v.Statuses = append(v.Statuses, string(s))
	}
	for t := range c.fcfg.Types {
		v.Types = append(v.Types, string(t))
	}
	sort.Strings(v.Statuses)
	sort.Strings(v.Types)
	return v
}

// Highlights returns the current overlay state.
func (c *Controller) Highlights() highlight.State {
	return c.hl.Snapshot()
}

// Selection returns the selected participant pid, empty when none.
func (c *Controller) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Participant looks up one participant in the current snapshot.
func (c *Controller) Participant(pid string) (model.Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return model.Participant{}, ErrLoading
	}
	p, ok := c.snap.ParticipantIndex()[pid]
	if !ok {
		return model.Participant{}, ErrUnknownPID
	}
	return p, nil
}

// Equivalents lists the equivalents present in the current snapshot.
func (c *Controller) Equivalents() []model.Equivalent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	return append([]model.Equivalent(nil), c.snap.Equivalents...)
}
