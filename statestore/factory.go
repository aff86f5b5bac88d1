package statestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spektr-org/autovis/config"
)

// New creates the store selected by cfg.Type.
func New(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case config.StoreMemory, "":
		return NewMemoryStore(), nil
	case config.StoreRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			KeyPrefix:   cfg.KeyPrefix,
			TTL:         cfg.TTL,
			DialTimeout: cfg.DialTimeout,
			Logger:      logger,
		})
	}
	return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
}
