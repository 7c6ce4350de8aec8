package engine

import (
	"context"
	"time"

	"github.com/creditmesh/netview/internal/adapters/source"
	"github.com/creditmesh/netview/internal/browse"
	"github.com/creditmesh/netview/internal/domain/analytics"
	"github.com/creditmesh/netview/internal/domain/ego"
	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/filter"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/domain/money"
	"github.com/creditmesh/netview/internal/prefs"
	"github.com/creditmesh/netview/internal/render"
	"github.com/creditmesh/netview/pkg/logger"
	"github.com/creditmesh/netview/pkg/metrics"

	"github.com/google/uuid"
)

// FilterUpdate carries a partial filter mutation; nil fields keep their
// current value.
type FilterUpdate struct {
	Equivalent   *string
	Statuses     []model.TrustlineStatus
	Types        []model.ParticipantType
	MinDegree    *int
	HideIsolates *bool
	Threshold    *string
}

// Reload discards the working set and fetches a fresh snapshot. Only the most
// recent in-flight load may apply its result; superseded responses are
// dropped.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.loadGen++
	gen := c.loadGen
	c.phase = PhaseLoading
	filters := source.Filters{Equivalent: c.fcfg.Equivalent}
	if c.focus.Enabled {
		filters.FocusPID = c.focus.RootPID
		filters.FocusDepth = c.focus.Depth
	}
	reqID := uuid.NewString()
	c.mu.Unlock()

	c.log.Info(ctx, "loading snapshot",
		logger.String("request_id", reqID),
		logger.String("equivalent", filters.Equivalent),
		logger.String("focus", filters.FocusPID),
	)

	start := time.Now()
	metrics.RecordSnapshotLoad()
	snap, err := c.src.LoadSnapshot(ctx, filters)
	metrics.RecordSnapshotLoadDuration(float64(time.Since(start).Milliseconds()))

	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		metrics.RecordStaleResultDropped()
		c.log.Debug(ctx, "dropping superseded snapshot", logger.String("request_id", reqID))
		return nil
	}
	if err != nil {
		// Page-level failure: prior state is discarded, no partial render.
		metrics.RecordSnapshotLoadFailure()
		c.snap = nil
		c.nodes, c.edges = nil, nil
		c.cycles = nil
		c.report = nil
		c.phase = PhaseFailed
		c.loadErr = err
		c.rend.Clear()
		c.mu.Unlock()
		c.hl.OnRebuild()
		c.log.Error(ctx, "snapshot load failed", logger.String("request_id", reqID), logger.Error(err))
		return ErrLoadSnapshot
	}

	c.snap = snap
	c.loadErr = nil
	c.phase = PhaseReady
	if c.selection != "" {
		if _, ok := snap.ParticipantIndex()[c.selection]; !ok {
			c.selection = ""
			c.fcfg.PinnedPID = ""
			c.cycles = nil
			c.report = nil
		}
	}
	c.mu.Unlock()

	c.hl.OnRebuild()
	c.rebuild(ctx, true)
	c.refreshBrowser()
	c.recomputeAnalytics(ctx)
	return nil
}

// SetFilters applies a bulk filter mutation. An equivalent change reloads from
// the collaborator (its snapshot may be scope-filtered); everything else only
// schedules a coalesced rebuild.
func (c *Controller) SetFilters(ctx context.Context, u FilterUpdate) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}

	equivalentChanged := false
	if u.Equivalent != nil && *u.Equivalent != c.fcfg.Equivalent {
		c.fcfg.Equivalent = *u.Equivalent
		equivalentChanged = true
	}
	if u.Statuses != nil {
		set := make(map[model.TrustlineStatus]bool, len(u.Statuses))
		for _, s := range u.Statuses {
			set[s] = true
		}
		c.fcfg.Statuses = set
	}
	if u.Types != nil {
		set := make(map[model.ParticipantType]bool, len(u.Types))
		for _, t := range u.Types {
			set[t] = true
		}
		c.fcfg.Types = set
	}
	if u.MinDegree != nil && *u.MinDegree >= 0 {
		c.fcfg.MinDegree = *u.MinDegree
	}
	if u.HideIsolates != nil {
		c.fcfg.HideIsolates = *u.HideIsolates
	}
	if u.Threshold != nil {
		if _, err := money.Parse(*u.Threshold); err != nil {
			// Malformed threshold keeps the previous value; the
			// filtering path never throws on bad numeric input.
			c.log.Warn(ctx, "ignoring malformed threshold", logger.String("threshold", *u.Threshold))
		} else {
			c.threshold = *u.Threshold
		}
	}

	// Any filter change invalidates a previous oversize opt-in.
	c.renderAll = false
	c.mu.Unlock()

	if equivalentChanged {
		c.savePrefs(ctx)
		c.recomputeAnalytics(ctx)
		return c.Reload(ctx)
	}

	c.scheduleRebuild(ctx)
	c.refreshBrowser()
	c.recomputeAnalytics(ctx)
	return nil
}

// SetFocus enables focus mode on a root participant. The neighborhood-scoped
// refresh is awaited before any rebuild; the render refits afterwards.
func (c *Controller) SetFocus(ctx context.Context, root string, depth int) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if root == "" {
		c.mu.Unlock()
		return ErrUnknownPID
	}
	c.focus = ego.Spec{Enabled: true, RootPID: root, Depth: depth}.Normalize()
	c.renderAll = false
	c.mu.Unlock()

	return c.Reload(ctx)
}

// ClearFocus disables focus mode and restores the full working set.
func (c *Controller) ClearFocus(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.focus = ego.Spec{}
	c.renderAll = false
	c.mu.Unlock()

	return c.Reload(ctx)
}

// SelectNode marks a participant as selected: it becomes exempt from degree
// pruning, the connection browser rescopes, analytics recompute, and a
// clearing-cycle fetch starts in the background.
func (c *Controller) SelectNode(ctx context.Context, pid string) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if c.snap == nil || c.phase == PhaseLoading {
		c.mu.Unlock()
		return ErrLoading
	}
	if _, ok := c.snap.ParticipantIndex()[pid]; !ok {
		c.mu.Unlock()
		return ErrUnknownPID
	}

	c.selection = pid
	c.fcfg.PinnedPID = pid
	c.selGen++
	gen := c.selGen
	c.mu.Unlock()

	// Cycle- and connection-highlights reference edges tied to the previous
	// selection; search survives.
	c.hl.OnSelectionChanged()

	c.scheduleRebuild(ctx)
	c.refreshBrowser()
	c.recomputeAnalytics(ctx)

	go c.fetchCycles(pid, gen)
	return nil
}

// ClearSelection drops the selection and its derived data.
func (c *Controller) ClearSelection(ctx context.Context) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.selection = ""
	c.fcfg.PinnedPID = ""
	c.selGen++
	c.cycles = nil
	c.report = nil
	c.mu.Unlock()

	c.hl.OnSelectionChanged()
	c.scheduleRebuild(ctx)
	c.refreshBrowser()
}

// fetchCycles loads clearing cycles for the selection. Stale responses are
// dropped ("last selection wins"); failures retain previous cycle data and
// are swallowed.
func (c *Controller) fetchCycles(pid string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), cycleFetchTimeout)
	defer cancel()

	metrics.RecordCycleFetch()
	cycles, err := c.src.FetchClearingCycles(ctx, pid)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.selGen {
		metrics.RecordStaleResultDropped()
		return
	}
	if err != nil {
		metrics.RecordCycleFetchFailure()
		c.log.Debug(ctx, "clearing-cycle fetch failed; keeping previous data",
			logger.String("pid", pid), logger.Error(err))
		return
	}
	c.cycles = cycles
}

// Search matches the query against the rendered nodes and lights up the hits.
// The overlay persists while the query is edited; an empty query clears it.
func (c *Controller) Search(ctx context.Context, query string) []string {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	nodes := c.nodes
	c.searchGen++
	c.mu.Unlock()

	if query == "" {
		c.hl.ClearSearch()
		return nil
	}

	hits := c.hl.SearchHits(nodes, query)
	c.hl.ActivateSearch(query, hits)
	metrics.RecordHighlightToggle("search")
	c.log.Debug(ctx, "search overlay updated", logger.String("query", query), logger.Int("hits", len(hits)))
	return hits
}

// FindAndFlash runs an explicit find: the overlay activates, the camera
// centers on the first hit, and the overlay auto-clears after a short delay
// unless a newer search replaces it.
func (c *Controller) FindAndFlash(ctx context.Context, query string) []string {
	hits := c.Search(ctx, query)
	if len(hits) == 0 {
		return hits
	}

	c.rend.CenterOn(hits[0])

	c.mu.Lock()
	gen := c.searchGen
	delay := c.searchClearDelay
	c.mu.Unlock()

	time.AfterFunc(delay, func() {
		c.mu.Lock()
		stale := gen != c.searchGen
		c.mu.Unlock()
		if !stale {
			c.hl.ClearSearch()
		}
	})
	return hits
}

// Cycles returns the clearing cycles fetched for the current selection.
func (c *Controller) Cycles() []model.ClearingCycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ClearingCycle(nil), c.cycles...)
}

// ToggleCycleHighlight toggles the cycle overlay for the idx-th fetched
// cycle. Returns whether the overlay is active afterwards.
func (c *Controller) ToggleCycleHighlight(idx int) (bool, error) {
	c.mu.Lock()
	if idx < 0 || idx >= len(c.cycles) {
		c.mu.Unlock()
		return false, ErrCycleIndex
	}
	cycle := c.cycles[idx]
	edges := c.edges
	c.mu.Unlock()

	metrics.RecordHighlightToggle("cycle")
	return c.hl.ToggleCycle(cycle, edges), nil
}

// ToggleConnectionHighlight toggles the connection overlay for one trustline.
func (c *Controller) ToggleConnectionHighlight(from, to, equivalent string) bool {
	c.mu.Lock()
	edges := c.edges
	c.mu.Unlock()

	metrics.RecordHighlightToggle("connection")
	return c.hl.ToggleConnection(from, to, equivalent, edges)
}

// ClickConnection is the browser row-click behavior: toggle the connection
// overlay and re-center on the counterparty.
func (c *Controller) ClickConnection(from, to, equivalent, counterparty string) bool {
	active := c.ToggleConnectionHighlight(from, to, equivalent)
	c.rend.CenterOn(counterparty)
	return active
}

// SetLayoutSpacing updates the spacing multiplier. Layout re-runs are
// throttled independently of element rebuilds; they are the most expensive
// render operation.
func (c *Controller) SetLayoutSpacing(ctx context.Context, spacing float64) {
	if spacing <= 0 {
		return
	}
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.spacing = spacing
	c.mu.Unlock()

	c.layoutCo.Do(func() { c.runLayout() })
	c.savePrefs(ctx)
}

// SetLayoutName selects the layout algorithm and re-runs it.
func (c *Controller) SetLayoutName(name render.LayoutName) {
	c.mu.Lock()
	switch name {
	case render.LayoutForceDirected, render.LayoutGrid, render.LayoutCircle:
		c.layoutName = name
	default:
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.layoutCo.Do(func() { c.runLayout() })
}

func (c *Controller) runLayout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deferred || len(c.nodes) == 0 {
		return
	}
	c.rend.RunLayout(c.layoutName, render.ForceParams(c.spacing))
}

// SetZoom forwards a camera zoom change to the render engine.
func (c *Controller) SetZoom(zoom float64) {
	c.rend.SetZoom(zoom)
}

// SetLabelPolicy replaces the label decimation policy.
func (c *Controller) SetLabelPolicy(policy render.LabelPolicy) {
	c.rend.SetLabelPolicy(policy)
}

// Fit frames all rendered elements.
func (c *Controller) Fit() { c.rend.Fit() }

// CenterOn pans to one node with a transient pulse.
func (c *Controller) CenterOn(pid string) { c.rend.CenterOn(pid) }

// FitConnectedComponent frames the component containing pid.
func (c *Controller) FitConnectedComponent(pid string) { c.rend.FitConnectedComponent(pid) }

// ForceRender opts in to rendering a result set that exceeds the caps.
func (c *Controller) ForceRender(ctx context.Context) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.renderAll = true
	c.mu.Unlock()

	c.rebuild(ctx, true)
}

// ConnectionsPage returns the current page for one browser direction.
func (c *Controller) ConnectionsPage(dir browse.Direction) (browse.Page, error) {
	c.mu.Lock()
	if c.selection == "" {
		c.mu.Unlock()
		return browse.Page{}, ErrNoSelection
	}
	c.mu.Unlock()
	return c.br.PageFor(dir), nil
}

// SetConnectionsPage moves one browser cursor.
func (c *Controller) SetConnectionsPage(dir browse.Direction, page int) {
	c.br.SetPage(dir, page)
}

// Analytics returns the report for the current selection.
func (c *Controller) Analytics() (analytics.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == "" {
		return analytics.Report{}, ErrNoSelection
	}
	if c.report == nil {
		return analytics.Report{}, ErrLoading
	}
	return *c.report, nil
}

// scheduleRebuild folds bursts of mutations into coalesced rebuilds so rapid
// input (slider drags) cannot thrash the render.
func (c *Controller) scheduleRebuild(ctx context.Context) {
	c.rebuildCo.Do(func() { c.rebuild(ctx, false) })
}

// rebuild runs the one-way pipeline against the current snapshot and pushes
// the result into the render engine.
func (c *Controller) rebuild(ctx context.Context, fit bool) {
	start := time.Now()

	c.mu.Lock()
	if !c.started || c.snap == nil || c.phase == PhaseLoading || c.phase == PhaseFailed {
		c.mu.Unlock()
		return
	}
	snap := c.snap

	visible, hasAnyEdge := filter.VisibleEdges(snap.Participants, snap.Trustlines, c.fcfg)

	restriction := filter.Restriction{}
	if c.focus.Enabled {
		restriction = filter.Restriction{
			Keep:       ego.Extract(visible, c.focus.RootPID, c.focus.Depth),
			Root:       c.focus.RootPID,
			SkipDegree: true,
		}
	}

	res := filter.Assemble(snap.Participants, visible, hasAnyEdge, c.fcfg, restriction)
	nodes, edges := elements.Build(res, snap.Incidents, c.fcfg.Equivalent, c.threshold)
	c.nodes, c.edges = nodes, edges

	if (len(nodes) > c.nodeCap || len(edges) > c.edgeCap) && !c.renderAll {
		c.deferred = true
		c.phase = PhaseDeferred
		c.rend.Clear()
		metrics.RecordOversizedSkip()
		c.log.Warn(ctx, "auto-render skipped: result exceeds caps",
			logger.Int("nodes", len(nodes)), logger.Int("edges", len(edges)))
	} else {
		c.deferred = false
		if len(nodes) == 0 {
			c.phase = PhaseEmpty
		} else {
			c.phase = PhaseReady
		}
		c.rend.SetElements(nodes, edges)
		c.rend.RunLayout(c.layoutName, render.ForceParams(c.spacing))
		if fit {
			c.rend.Fit()
		}
		metrics.UpdateRenderedNodes(len(nodes))
		metrics.UpdateRenderedEdges(len(edges))
	}
	c.mu.Unlock()

	// A full rebuild invalidates edge-bound overlays.
	c.hl.OnRebuild()

	metrics.RecordRebuild()
	metrics.RecordRebuildDuration(float64(time.Since(start).Milliseconds()))
}

// refreshBrowser rescopes the connection browser to the current selection.
func (c *Controller) refreshBrowser() {
	c.mu.Lock()
	selection := c.selection
	threshold := c.threshold
	var trustlines []model.Trustline
	var index map[string]model.Participant
	if c.snap != nil {
		trustlines = c.snap.Trustlines
		index = c.snap.ParticipantIndex()
	}
	c.mu.Unlock()

	c.br.SetData(selection, trustlines, index, threshold)
}

// recomputeAnalytics re-runs the analytics engine for the current selection.
func (c *Controller) recomputeAnalytics(ctx context.Context) {
	c.mu.Lock()
	if c.snap == nil || c.selection == "" {
		c.report = nil
		c.mu.Unlock()
		return
	}
	snap := c.snap
	in := analytics.Input{PID: c.selection, Scope: c.fcfg.Equivalent}
	c.mu.Unlock()

	start := time.Now()
	report, err := c.an.Analyze(ctx, snap, in)
	metrics.RecordAnalyticsRecompute()
	metrics.RecordAnalyticsDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.log.Warn(ctx, "analytics recompute failed", logger.String("pid", in.PID), logger.Error(err))
		return
	}

	c.mu.Lock()
	if c.selection == in.PID {
		c.report = &report
	}
	c.mu.Unlock()
}

// Prefs returns the last known UI preferences.
func (c *Controller) Prefs(ctx context.Context) prefs.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefsData.LayoutSpacing = c.spacing
	c.prefsData.LastEquivalent = c.fcfg.Equivalent
	return c.prefsData
}

// ApplyPrefs replaces the stored preferences and applies the engine-relevant
// fields (spacing, last equivalent).
func (c *Controller) ApplyPrefs(ctx context.Context, p prefs.Preferences) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.prefsData = p
	c.mu.Unlock()

	if p.LayoutSpacing > 0 {
		c.SetLayoutSpacing(ctx, p.LayoutSpacing)
	}
	if p.LastEquivalent != "" {
		eq := p.LastEquivalent
		if err := c.SetFilters(ctx, FilterUpdate{Equivalent: &eq}); err != nil {
			return err
		}
	}
	c.savePrefs(ctx)
	return nil
}

// savePrefs persists the UI preferences, best effort. Spacing and equivalent
// are folded in; unrelated persisted fields survive.
func (c *Controller) savePrefs(ctx context.Context) {
	if c.store == nil {
		return
	}

	c.mu.Lock()
	c.prefsData.LayoutSpacing = c.spacing
	c.prefsData.LastEquivalent = c.fcfg.Equivalent
	p := c.prefsData
	c.mu.Unlock()

	c.store.Save(ctx, p)
}
