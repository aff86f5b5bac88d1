package builder

import (
	"log/slog"

	"github.com/spektr-org/autovis/statestore"
)

// ============================================================================
// BUILDER OPTIONS — Functional options for New()
// ============================================================================

// Option configures a Builder via functional options pattern.
type Option func(*config)

type config struct {
	store    statestore.Store
	stateKey string
	initial  *statestore.State
	logger   *slog.Logger
}

// WithStateStore persists the builder's chart type, axes mapping and styles
// under key. An empty key defaults to the builder ID. Nothing is saved before
// Init has loaded the stored state.
func WithStateStore(store statestore.Store, key string) Option {
	return func(c *config) {
		c.store = store
		c.stateKey = key
	}
}

// WithInitialState seeds the cells at Init when the store holds nothing.
func WithInitialState(state statestore.State) Option {
	return func(c *config) {
		c.initial = &state
	}
}

// WithLogger sets the logger. Records carry a builder_id attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}
