// Package cache stores raw provider responses between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: never stores anything, for --cache none and tests
//
// # Keys
//
// Keys come from a [Keyer]. The [DefaultKeyer] hashes the provider source and
// block range; wrap it in a [ScopedKeyer] to give a deployment or tenant its
// own namespace.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().RangeKey("https://api.example/blocks", 100, 120)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A zero ttl means no expiry.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// DefaultTTL is how long fetched ranges stay cached.
const DefaultTTL = 24 * time.Hour
