// Package cache stores rendered responses of the HTTP server.
//
// The conversion functions themselves never cache: a Cache only sits in
// front of them, keyed by a hash of the request. Backends:
//   - NullCache: caching disabled (the default)
//   - MemoryCache: in-process map, for a single instance and for tests
//   - RedisCache: shared between server instances
//
// Cache failures are not fatal to callers: a failed Get is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the entry for key. A miss is reported with
	// hit == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
