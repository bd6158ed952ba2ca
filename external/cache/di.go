package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/cache"
	"github.com/adityatawde9699/System-32---Inter-View-AI/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (cache.Cache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)

		var backend cache.Backend
		if cfg.RedisURL != "" {
			rb, err := NewRedisBackendFromURL(cfg.RedisURL, cfg.RedisOpTimeout)
			if err != nil {
				return nil, err
			}
			backend = rb
		}

		store, err := cache.New(context.Background(), backend,
			cache.WithTTL(cfg.SessionTTL),
			cache.WithFallback(cfg.RedisFallbackToMemory),
			cache.WithConnectTimeout(cfg.RedisConnectTimeout),
			cache.WithOpTimeout(cfg.RedisOpTimeout),
			cache.WithKeyPrefix(cfg.RedisKeyPrefix),
			cache.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session cache: %w", err)
		}
		return store, nil
	})
}
