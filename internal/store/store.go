// Package store provides the key-value substrate underneath the spatial
// cache. The cache owns TTL and LRU policy; a Store only has to persist
// bytes with get/put/delete semantics, so implementations can range from a
// process-local map to Redis.
package store

import (
	"context"
	"time"
)

// Store is the persistence substrate contract.
type Store interface {
	// Get returns the value for key, with found=false on a clean miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key. A positive ttl lets the substrate expire
	// the record on its own; the cache layer still enforces logical expiry
	// regardless.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the substrate is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
