// Package prefs persists operator UI preferences as a small TOML file.
// Loading is defensive: a missing or corrupt file resolves to defaults and
// never fails the caller.
package prefs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/creditmesh/netview/pkg/logger"
)

const fileMode = 0o600

// Preferences are the persisted view settings, restored on next load.
type Preferences struct {
	LegendVisible    bool     `toml:"legend_visible" json:"legend_visible"`
	LayoutSpacing    float64  `toml:"layout_spacing" json:"layout_spacing"`
	LastAnalyticsTab string   `toml:"last_analytics_tab" json:"last_analytics_tab"`
	LastEquivalent   string   `toml:"last_equivalent" json:"last_equivalent"`
	Toggles          []string `toml:"toggles" json:"toggles"`
}

// Defaults returns the preferences used when nothing valid is on disk.
func Defaults() Preferences {
	return Preferences{
		LegendVisible:    true,
		LayoutSpacing:    1.0,
		LastAnalyticsTab: "rank",
		LastEquivalent:   "ALL",
		Toggles:          []string{},
	}
}

// Store reads and writes the preferences file.
type Store struct {
	mu   sync.Mutex
	path string
	log  logger.Logger
}

// NewStore creates a preference store at the given path.
func NewStore(path string, log logger.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads preferences from disk. Any failure, including a corrupt file,
// resolves to Defaults; Load never returns an error to the caller.
func (s *Store) Load(ctx context.Context) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Defaults()
	if s.path == "" {
		return p
	}

	if _, err := toml.DecodeFile(s.path, &p); err != nil {
		if !errors.Is(err, fs.ErrNotExist) && s.log != nil {
			s.log.Warn(ctx, "preferences file unreadable; using defaults",
				logger.String("path", s.path), logger.Error(err))
		}
		return Defaults()
	}

	if p.LayoutSpacing <= 0 {
		p.LayoutSpacing = Defaults().LayoutSpacing
	}
	if p.LastEquivalent == "" {
		p.LastEquivalent = Defaults().LastEquivalent
	}
	if p.Toggles == nil {
		p.Toggles = []string{}
	}
	return p
}

// Save writes preferences to disk, best effort. Failures are logged, not
// returned; preference persistence must never take the engine down.
func (s *Store) Save(ctx context.Context, p Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.warn(ctx, err)
		return
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		s.warn(ctx, err)
		return
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(p); err != nil {
		s.warn(ctx, err)
	}
}

func (s *Store) warn(ctx context.Context, err error) {
	if s.log != nil {
		s.log.Warn(ctx, "failed to persist preferences",
			logger.String("path", s.path), logger.Error(err))
	}
}
