package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the distributed cache tier.
// Errors are logged and treated as misses so an unreachable Redis never
// fails a request; the tiered cache picks up with the in-process fallback.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedis connects to Redis using a URL (redis://[:password@]host:port/db).
func NewRedis(url string, defaultTTL time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second

	if defaultTTL <= 0 {
		defaultTTL = 30 * 24 * time.Hour
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not reachable at startup, continuing with degraded cache", "error", err)
	}

	return &Redis{client: client, defaultTTL: defaultTTL}, nil
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis get failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (c *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("redis set failed", "key", key, "error", err)
	}
}

func (c *Redis) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("redis delete failed", "key", key, "error", err)
	}
}

// Close closes the underlying client.
func (c *Redis) Close() error {
	return c.client.Close()
}
