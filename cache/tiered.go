package cache

import (
	"context"
	"time"
)

// Tiered layers a distributed cache over an in-process one.
// Reads try the remote tier first and fall back locally; writes go through
// to both so a remote outage only costs freshness, never correctness.
type Tiered struct {
	remote Cache // may be nil
	local  Cache
}

// NewTiered creates a tiered cache. remote may be nil, in which case only
// the local tier is used.
func NewTiered(remote Cache, local Cache) *Tiered {
	if local == nil {
		local = NewLRU(0, 0)
	}
	return &Tiered{remote: remote, local: local}
}

func (c *Tiered) Get(ctx context.Context, key string) (string, bool) {
	if c.remote != nil {
		if value, ok := c.remote.Get(ctx, key); ok {
			return value, true
		}
	}
	return c.local.Get(ctx, key)
}

func (c *Tiered) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if c.remote != nil {
		c.remote.Set(ctx, key, value, ttl)
	}
	c.local.Set(ctx, key, value, ttl)
}

func (c *Tiered) Delete(ctx context.Context, key string) {
	if c.remote != nil {
		c.remote.Delete(ctx, key)
	}
	c.local.Delete(ctx, key)
}
