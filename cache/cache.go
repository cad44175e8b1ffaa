// Package cache provides the key/value store used to memoize expensive
// generation results (tasting notes, pairings). Keys are content-addressed,
// values are idempotent once valid, so concurrent writers are benign.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with TTL.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value with the given TTL. A non-positive TTL uses the
	// store's default.
	Set(ctx context.Context, key string, value string, ttl time.Duration)

	// Delete removes a key. Used to evict stale placeholder values.
	Delete(ctx context.Context, key string)
}
