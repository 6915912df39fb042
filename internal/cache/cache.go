// Package cache provides the volatile tier in front of the word store.
//
// Every adapter swallows its own failures: a broken or absent cache behaves
// exactly like an empty one.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/scanvoca/scanvoca/internal/config"
	"github.com/scanvoca/scanvoca/internal/dictionary"
)

//go:generate mockgen -source=cache.go -destination=../mocks/cache/mock_cache.go -package=mock_cache

// Cache holds recently resolved records keyed by normalized word.
type Cache interface {
	// Get reports a miss on absence and on any failure.
	Get(ctx context.Context, key string) (dictionary.Record, bool)
	// Set stores rec for ttl and reports whether the write succeeded.
	Set(ctx context.Context, key string, rec dictionary.Record, ttl time.Duration) bool
}

// Unavailable is the cache used when no cache is configured or reachable.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (dictionary.Record, bool) {
	return dictionary.Record{}, false
}

func (Unavailable) Set(context.Context, string, dictionary.Record, time.Duration) bool {
	return false
}

// Open builds the cache selected by cfg. The returned function releases its connection.
func Open(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (Cache, func() error) {
	switch cfg.Driver {
	case config.CacheRedis:
		return ConnectRedis(ctx, cfg.RedisURL, cfg.KeyPrefix, logger)
	case config.CacheMemory:
		return NewMemory(cfg.Size, cfg.TTL), func() error { return nil }
	default:
		return Unavailable{}, func() error { return nil }
	}
}
