package main

import (
	"context"
	"fmt"

	"github.com/velora-shop/storefront/internal/store/persist"
	"github.com/velora-shop/storefront/pkg/config"
)

// newSaver builds the configured snapshot backend and returns it with its
// close hook.
func newSaver(ctx context.Context, cfg config.StateConfig) (persist.Saver, func() error, error) {
	switch cfg.Backend {
	case config.StateBackendFile:
		saver, err := persist.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("creating file state backend: %w", err)
		}
		return saver, func() error { return nil }, nil
	case config.StateBackendRedis:
		saver, err := persist.NewRedisStore(ctx, cfg.RedisURL, cfg.Session, cfg.RedisTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("creating redis state backend: %w", err)
		}
		return saver, saver.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
}
