// Package metrics provides Prometheus metrics for the netview graph engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the netview service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Snapshot lifecycle
	snapshotLoads        prometheus.Counter
	snapshotLoadFailures prometheus.Counter
	snapshotLoadDuration prometheus.Histogram

	// Graph rebuild pipeline
	rebuilds        prometheus.Counter
	rebuildDuration prometheus.Histogram
	oversizedSkips  prometheus.Counter
	renderedNodes   prometheus.Gauge
	renderedEdges   prometheus.Gauge

	// Analytics
	analyticsRecomputes prometheus.Counter
	analyticsDuration   prometheus.Histogram

	// Async hygiene
	staleResultsDropped prometheus.Counter
	cycleFetches        prometheus.Counter
	cycleFetchFailures  prometheus.Counter

	// Interaction
	highlightToggles *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithHistogramBuckets overrides the default histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "netview",
		subsystem:        "graph",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.snapshotLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_loads_total",
		Help:      "Total number of snapshot loads attempted",
	})

	m.snapshotLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_load_failures_total",
		Help:      "Total number of snapshot loads that failed",
	})

	m.snapshotLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_load_duration_milliseconds",
		Help:      "Histogram of snapshot load duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rebuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuilds_total",
		Help:      "Total number of element rebuilds executed",
	})

	m.rebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuild_duration_milliseconds",
		Help:      "Histogram of filter-to-render rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.oversizedSkips = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oversized_skips_total",
		Help:      "Total number of auto-renders skipped because the result exceeded caps",
	})

	m.renderedNodes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rendered_nodes",
		Help:      "Number of nodes in the current render",
	})

	m.renderedEdges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rendered_edges",
		Help:      "Number of edges in the current render",
	})

	m.analyticsRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analytics_recomputes_total",
		Help:      "Total number of analytics recomputations",
	})

	m.analyticsDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analytics_duration_milliseconds",
		Help:      "Histogram of analytics recomputation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.staleResultsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_results_dropped_total",
		Help:      "Total number of superseded async results discarded",
	})

	m.cycleFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_fetches_total",
		Help:      "Total number of clearing-cycle fetches triggered by selection",
	})

	m.cycleFetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_fetch_failures_total",
		Help:      "Total number of clearing-cycle fetches that failed (non-fatal)",
	})

	m.highlightToggles = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "highlight_toggles_total",
			Help:      "Total number of highlight overlay toggles by overlay kind",
		},
		[]string{"overlay"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Handler returns an http.Handler serving this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level wrappers over the global manager.

// RecordSnapshotLoad records one attempted snapshot load.
func RecordSnapshotLoad() { globalManager.snapshotLoads.Inc() }

// RecordSnapshotLoadFailure records one failed snapshot load.
func RecordSnapshotLoadFailure() { globalManager.snapshotLoadFailures.Inc() }

// RecordSnapshotLoadDuration records snapshot load duration in milliseconds.
func RecordSnapshotLoadDuration(ms float64) { globalManager.snapshotLoadDuration.Observe(ms) }

// RecordRebuild records one executed element rebuild.
func RecordRebuild() { globalManager.rebuilds.Inc() }

// RecordRebuildDuration records rebuild duration in milliseconds.
func RecordRebuildDuration(ms float64) { globalManager.rebuildDuration.Observe(ms) }

// RecordOversizedSkip records one auto-render skipped over caps.
func RecordOversizedSkip() { globalManager.oversizedSkips.Inc() }

// UpdateRenderedNodes sets the rendered node count gauge.
func UpdateRenderedNodes(n int) { globalManager.renderedNodes.Set(float64(n)) }

// UpdateRenderedEdges sets the rendered edge count gauge.
func UpdateRenderedEdges(n int) { globalManager.renderedEdges.Set(float64(n)) }

// RecordAnalyticsRecompute records one analytics recomputation.
func RecordAnalyticsRecompute() { globalManager.analyticsRecomputes.Inc() }

// RecordAnalyticsDuration records analytics duration in milliseconds.
func RecordAnalyticsDuration(ms float64) { globalManager.analyticsDuration.Observe(ms) }

// RecordStaleResultDropped records one superseded async result discarded.
func RecordStaleResultDropped() { globalManager.staleResultsDropped.Inc() }

// RecordCycleFetch records one clearing-cycle fetch.
func RecordCycleFetch() { globalManager.cycleFetches.Inc() }

// RecordCycleFetchFailure records one failed clearing-cycle fetch.
func RecordCycleFetchFailure() { globalManager.cycleFetchFailures.Inc() }

// RecordHighlightToggle records a highlight toggle for the given overlay kind.
func RecordHighlightToggle(overlay string) {
	globalManager.highlightToggles.WithLabelValues(overlay).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutineCount.Set(float64(n)) }

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(ms float64) { globalManager.systemGCPauseTime.Observe(ms) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler returns the HTTP handler for the global registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
