package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scanvoca/scanvoca/internal/dictionary"
)

// Redis stores records as JSON strings under "<prefix><key>".
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, logger *slog.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, logger: logger}
}

// ConnectRedis dials url and pings it. When the server cannot be reached it logs
// a warning and returns Unavailable, together with a no-op close function.
func ConnectRedis(ctx context.Context, url, prefix string, logger *slog.Logger) (Cache, func() error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid redis url, running without cache", "error", err)
		return Unavailable{}, func() error { return nil }
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis is unreachable, running without cache", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return Unavailable{}, func() error { return nil }
	}
	logger.Info("connected to redis", "addr", opts.Addr)
	return NewRedis(client, prefix, logger), client.Close
}

func (c *Redis) Get(ctx context.Context, key string) (dictionary.Record, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return dictionary.Record{}, false
	}

	var rec dictionary.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		c.logger.Warn("cached record is corrupt", "key", key, "error", err)
		return dictionary.Record{}, false
	}
	return rec, true
}

func (c *Redis) Set(ctx context.Context, key string, rec dictionary.Record, ttl time.Duration) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return false
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}
