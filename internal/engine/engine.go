// Package engine owns the interactive graph state and orchestrates the one-way
// pipeline: snapshot -> filter -> (focus) -> elements -> render. All shared
// state lives in one controller guarded by a single mutex, mutated only
// through the enumerated entry points in mutations.go.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/creditmesh/netview/internal/adapters/source"
	"github.com/creditmesh/netview/internal/browse"
	"github.com/creditmesh/netview/internal/domain/analytics"
	"github.com/creditmesh/netview/internal/domain/ego"
	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/filter"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/highlight"
	"github.com/creditmesh/netview/internal/prefs"
	"github.com/creditmesh/netview/internal/render"
	"github.com/creditmesh/netview/pkg/coalesce"
	"github.com/creditmesh/netview/pkg/logger"
)

// Sentinel errors.
var (
	ErrNotStarted   = errors.New("engine not started")
	ErrNoSelection  = errors.New("no participant selected")
	ErrUnknownPID   = errors.New("participant not in current snapshot")
	ErrLoading      = errors.New("snapshot load in flight")
	ErrCycleIndex   = errors.New("cycle index out of range")
	ErrLoadSnapshot = errors.New("snapshot load failed")
)

// Phase is the engine's load/render lifecycle state.
type Phase string

// Phases.
const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseEmpty    Phase = "empty"
	PhaseFailed   Phase = "failed"
	PhaseDeferred Phase = "deferred"
)

// Default tuning values; overridable via options.
const (
	defaultRebuildInterval  = 150 * time.Millisecond
	defaultLayoutInterval   = 400 * time.Millisecond
	defaultSearchClearDelay = 2500 * time.Millisecond
	defaultNodeCap          = 2000
	defaultEdgeCap          = 4000
	cycleFetchTimeout       = 10 * time.Second
)

// Controller is the single owner of all engine state.
type Controller struct {
	mu sync.Mutex

	// Collaborators
	src   source.Client
	rend  render.Engine
	an    analytics.Engine
	hl    *highlight.Controller
	br    *browse.Browser
	store *prefs.Store

	// Dataset
	snap    *model.Snapshot
	phase   Phase
	loadErr error

	// Filter / focus / selection state
	fcfg      filter.Config
	focus     ego.Spec
	threshold string
	selection string

	// Render state
	spacing    float64
	layoutName render.LayoutName
	nodes      []elements.Node
	edges      []elements.Edge
	deferred   bool
	renderAll  bool // explicit opt-in past the caps
	nodeCap    int
	edgeCap    int

	// Per-selection data
	cycles []model.ClearingCycle
	report *analytics.Report

	// Last known UI preferences; spacing and equivalent are folded in on
	// save so unrelated persisted fields survive.
	prefsData prefs.Preferences

	// Async staleness guards: a result applies only while its generation
	// is still current ("last selection wins").
	loadGen   uint64
	selGen    uint64
	searchGen uint64

	// Coalescing
	rebuildCo        *coalesce.Coalescer
	layoutCo         *coalesce.Coalescer
	rebuildInterval  time.Duration
	layoutInterval   time.Duration
	searchClearDelay time.Duration
	searchHitCap     int

	// Analytics configuration carried into the engine build
	histogramBuckets int
	activityWindows  []int
	pageSize         int

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithSource sets the data collaborator. Required.
func WithSource(src source.Client) Option {
	return func(c *Controller) { c.src = src }
}

// WithRenderEngine injects a rendering backend. Defaults to the headless
// engine.
func WithRenderEngine(r render.Engine) Option {
	return func(c *Controller) {
		if r != nil {
			c.rend = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithThreshold sets the bottleneck threshold decimal string.
func WithThreshold(threshold string) Option {
	return func(c *Controller) {
		if threshold != "" {
			c.threshold = threshold
		}
	}
}

// WithCaps bounds auto-rendering.
func WithCaps(nodeCap, edgeCap int) Option {
	return func(c *Controller) {
		if nodeCap > 0 {
			c.nodeCap = nodeCap
		}
		if edgeCap > 0 {
			c.edgeCap = edgeCap
		}
	}
}

// WithPageSize sets the connection-browser page size.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRebuildInterval throttles full element rebuilds.
func WithRebuildInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.rebuildInterval = d
		}
	}
}

// WithLayoutInterval throttles layout re-runs.
func WithLayoutInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.layoutInterval = d
		}
	}
}

// WithSearchHitCap bounds the search overlay.
func WithSearchHitCap(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.searchHitCap = n
		}
	}
}

// WithSearchClearDelay sets the auto-clear delay for explicit finds.
func WithSearchClearDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.searchClearDelay = d
		}
	}
}

// WithHistogramBuckets sets the net-distribution bucket count.
func WithHistogramBuckets(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.histogramBuckets = n
		}
	}
}

// WithActivityWindows sets the rolling analytics windows in days.
func WithActivityWindows(days []int) Option {
	return func(c *Controller) {
		if len(days) > 0 {
			c.activityWindows = append([]int(nil), days...)
		}
	}
}

// WithPrefsStore enables UI-preference persistence.
func WithPrefsStore(store *prefs.Store) Option {
	return func(c *Controller) { c.store = store }
}

// New constructs a Controller with default configuration.
func New(opts ...Option) *Controller {
	c := &Controller{
		phase:            PhaseIdle,
		threshold:        "0.10",
		spacing:          1.0,
		layoutName:       render.LayoutForceDirected,
		nodeCap:          defaultNodeCap,
		edgeCap:          defaultEdgeCap,
		rebuildInterval:  defaultRebuildInterval,
		layoutInterval:   defaultLayoutInterval,
		searchClearDelay: defaultSearchClearDelay,
		searchHitCap:     highlight.DefaultMaxSearchHits,
		pageSize:         browse.DefaultPageSize,
		fcfg:             filter.Config{Equivalent: "ALL"},
		prefsData:        prefs.Defaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start initializes components, restores preferences, and performs the first
// snapshot load.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	if c.src == nil {
		c.mu.Unlock()
		return errors.New("engine requires a source client")
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	if c.rend == nil {
		c.rend = render.NewHeadless()
	}

	c.hl = highlight.NewController(highlight.WithMaxSearchHits(c.searchHitCap))
	c.br = browse.NewBrowser(browse.WithPageSize(c.pageSize))

	anOpts := []analytics.Option{analytics.WithBottleneckThreshold(c.threshold)}
	if c.histogramBuckets > 0 {
		anOpts = append(anOpts, analytics.WithBucketCount(c.histogramBuckets))
	}
	if len(c.activityWindows) > 0 {
		anOpts = append(anOpts, analytics.WithWindowDays(c.activityWindows))
	}
	c.an = analytics.NewInMemoryEngine(anOpts...)

	c.rebuildCo = coalesce.New(c.rebuildInterval)
	c.layoutCo = coalesce.New(c.layoutInterval)

	if c.store != nil {
		c.prefsData = c.store.Load(ctx)
		c.spacing = c.prefsData.LayoutSpacing
		c.fcfg.Equivalent = c.prefsData.LastEquivalent
	}

	c.started = true
	c.log.Info(ctx, "graph engine starting",
		logger.String("threshold", c.threshold),
		logger.Int("node_cap", c.nodeCap),
		logger.Int("edge_cap", c.edgeCap),
	)
	c.mu.Unlock()

	return c.Reload(ctx)
}

// Stop cancels pending coalesced work.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	c.rebuildCo.Stop()
	c.layoutCo.Stop()
	c.started = false
	c.log.Info(context.Background(), "graph engine stopped")
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Stats returns engine statistics for monitoring.
func (c *Controller) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := map[string]interface{}{
		"started":   c.started,
		"phase":     string(c.phase),
		"nodes":     len(c.nodes),
		"edges":     len(c.edges),
		"deferred":  c.deferred,
		"selection": c.selection,
		"threshold": c.threshold,
		"spacing":   c.spacing,
	}
	if c.snap != nil {
		stats["participants"] = len(c.snap.Participants)
		stats["trustlines"] = len(c.snap.Trustlines)
	}
	return stats
}
