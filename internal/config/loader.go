package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/creditmesh/netview/internal/domain/money"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if NETVIEW_CONFIG is set
//  3. env (prefix NETVIEW_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("NETVIEW_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: NETVIEW_ADDR, NETVIEW_NODE_CAP, ...
	// Map env keys like NETVIEW_NODE_CAP -> node_cap (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("NETVIEW_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "netview_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with. A malformed
// bottleneck threshold is replaced by the default rather than rejected, per
// the malformed-numeric-input policy.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.NodeCap <= 0 || c.EdgeCap <= 0 {
		return fmt.Errorf("%w: node_cap and edge_cap must be positive", ErrInvalidConfig)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if _, err := money.Parse(c.BottleneckThreshold); err != nil {
		c.BottleneckThreshold = New().BottleneckThreshold
	}
	return nil
}
