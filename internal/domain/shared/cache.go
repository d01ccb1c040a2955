package shared

import (
	"context"
	"time"
)

// CacheStore is a best-effort look-aside cache. Implementations must never
// surface backend failures to callers: a failed read reports a miss, a failed
// write reports false. Resolver correctness cannot depend on cache
// availability.
type CacheStore interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores value under key with the given TTL and reports whether the
	// write succeeded.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool

	// Close releases any resources held by the store.
	Close() error
}
