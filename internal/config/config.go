// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// SourceURL points at the upstream console backend. Empty runs the
	// built-in demo source.
	SourceURL string `koanf:"source_url"`

	// BottleneckThreshold is the available/limit ratio under which an
	// active trustline is flagged, as a decimal string.
	BottleneckThreshold string `koanf:"bottleneck_threshold"`

	// NodeCap and EdgeCap bound auto-rendering; larger results defer until
	// an explicit render request.
	NodeCap int `koanf:"node_cap"`
	EdgeCap int `koanf:"edge_cap"`

	// PageSize is the shared connection-browser page size.
	PageSize int `koanf:"page_size"`

	// RebuildIntervalMS throttles full element rebuilds.
	RebuildIntervalMS int `koanf:"rebuild_interval_ms"`

	// LayoutIntervalMS throttles layout re-runs (spacing changes).
	LayoutIntervalMS int `koanf:"layout_interval_ms"`

	// SearchHitCap bounds the search-hit overlay.
	SearchHitCap int `koanf:"search_hit_cap"`

	// SearchClearDelayMS is the auto-clear delay after an explicit find.
	SearchClearDelayMS int `koanf:"search_clear_delay_ms"`

	// HistogramBuckets is the net-distribution bucket count.
	HistogramBuckets int `koanf:"histogram_buckets"`

	// ActivityWindowDays are the rolling analytics windows.
	ActivityWindowDays []int `koanf:"activity_window_days"`

	// PrefsPath locates the persisted UI-preferences file.
	PrefsPath string `koanf:"prefs_path"`

	// DemoSeed and DemoParticipants shape the built-in demo dataset.
	DemoSeed         int64 `koanf:"demo_seed"`
	DemoParticipants int   `koanf:"demo_participants"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		SourceURL:           "",
		BottleneckThreshold: "0.10",
		NodeCap:             2000,
		EdgeCap:             4000,
		PageSize:            25,
		RebuildIntervalMS:   150,
		LayoutIntervalMS:    400,
		SearchHitCap:        40,
		SearchClearDelayMS:  2500,
		HistogramBuckets:    10,
		ActivityWindowDays:  []int{7, 30, 90},
		PrefsPath:           "netview_prefs.toml",
		DemoSeed:            42,
		DemoParticipants:    120,
	}
}
