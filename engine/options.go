package engine

import (
	"log/slog"
)

// ============================================================================
// REGISTRY OPTIONS — Functional options for NewRegistry()
// ============================================================================

// Option configures a Registry via functional options pattern.
type Option func(*config)

type config struct {
	rules  []VisualizationRule
	charts []ChartTypeConfig
	logger *slog.Logger
}

// WithRules registers rules in order (upsert by ID).
func WithRules(rules ...VisualizationRule) Option {
	return func(c *config) {
		c.rules = append(c.rules, rules...)
	}
}

// WithChartConfigs registers chart type configs, replacing any of the same type.
func WithChartConfigs(charts ...ChartTypeConfig) Option {
	return func(c *config) {
		c.charts = append(c.charts, charts...)
	}
}

// WithLogger sets the logger used for registration and matching diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}
