// Package cache implements the spatial cache: a TTL+LRU store keyed by
// (geohash, resource kind), with write-through persistence to a pluggable
// key-value substrate.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/moorwatch/wildfire-data-service/internal/domain"
	"github.com/moorwatch/wildfire-data-service/internal/store"
)

// Kind distinguishes resource types sharing the cache, so risk values and
// incident lists for the same cell coexist under different TTLs.
type Kind string

const (
	KindRisk           Kind = "risk"
	KindActiveFires    Kind = "active-fires"
	KindManualLocation Kind = "manual-location"
)

// Key indexes a cache entry. Geohash strings, never raw coordinates, so
// keys are safe to pass to the substrate and to log.
type Key struct {
	Geohash string
	Kind    Kind
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.Geohash
}

// entry is a node in both the key map and the recency list. The list is
// ordered by touch, not by timestamp, so eviction order stays deterministic
// even when a frozen test clock makes lastAccessed values collide.
type entry struct {
	key          Key
	value        []byte
	storedAt     time.Time
	ttl          time.Duration
	lastAccessed time.Time
	prev         *entry
	next         *entry
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.storedAt.Add(e.ttl))
}

// SpatialCache is a bounded TTL+LRU cache. A single mutex guards the index;
// every critical section is O(1) map and list work, so concurrent lookups on
// disjoint keys contend only momentarily, and same-key writes are
// linearizable (last write wins under the lock).
type SpatialCache struct {
	capacity int
	backing  store.Store
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[Key]*entry
	head    *entry // most recently accessed
	tail    *entry // least recently accessed
}

// New creates a SpatialCache bounded to capacity entries, persisting
// write-throughs to backing.
func New(backing store.Store, capacity int, logger *slog.Logger) *SpatialCache {
	return &SpatialCache{
		capacity: capacity,
		backing:  backing,
		logger:   logger,
		entries:  make(map[Key]*entry),
	}
}

// persistedEntry is the substrate wire form. TTL rides along so a restarted
// process can still enforce the original expiry on rehydrated entries.
type persistedEntry struct {
	Value    []byte        `json:"value"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Get returns the cached payload, or found=false for absent or expired
// entries. An expired entry is removed opportunistically on the way out;
// a memory miss falls back to the substrate and rehydrates on a hit.
func (c *SpatialCache) Get(ctx context.Context, key Key) ([]byte, bool) {
	now := domain.Clock().Now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if e.expired(now) {
			c.removeLocked(e)
			c.mu.Unlock()
			c.deleteBacking(ctx, key)
			return nil, false
		}
		c.touchLocked(e, now)
		val := e.value
		c.mu.Unlock()
		return val, true
	}
	c.mu.Unlock()

	return c.rehydrate(ctx, key, now)
}

// Put stores value under key with its own TTL, evicting the
// least-recently-accessed entry if the cache is full, and writes through to
// the substrate.
func (c *SpatialCache) Put(ctx context.Context, key Key, value []byte, ttl time.Duration) {
	now := domain.Clock().Now()
	var evicted *Key

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		e.ttl = ttl
		c.touchLocked(e, now)
	} else {
		e := &entry{key: key, value: value, storedAt: now, ttl: ttl, lastAccessed: now}
		c.entries[key] = e
		c.addToFront(e)
		if len(c.entries) > c.capacity && c.tail != nil {
			k := c.tail.key
			c.removeLocked(c.tail)
			evicted = &k
		}
	}
	c.mu.Unlock()

	if evicted != nil {
		c.deleteBacking(ctx, *evicted)
	}
	c.putBacking(ctx, key, value, now, ttl)
}

// EvictExpired physically removes every expired entry. Expiry is already
// enforced lazily on Get; this amortizes the remaining bookkeeping and is
// meant to run periodically.
func (c *SpatialCache) EvictExpired(ctx context.Context) int {
	now := domain.Clock().Now()
	var dead []Key

	c.mu.Lock()
	for _, e := range c.entries {
		if e.expired(now) {
			dead = append(dead, e.key)
		}
	}
	for _, k := range dead {
		if e, ok := c.entries[k]; ok {
			c.removeLocked(e)
		}
	}
	c.mu.Unlock()

	for _, k := range dead {
		c.deleteBacking(ctx, k)
	}
	return len(dead)
}

// Size returns the number of physically resident entries, expired or not;
// eviction is lazy, expiry is enforced on read.
func (c *SpatialCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// rehydrate consults the substrate after a memory miss and reinstates the
// entry if it is still within its original TTL.
func (c *SpatialCache) rehydrate(ctx context.Context, key Key, now time.Time) ([]byte, bool) {
	raw, found, err := c.backing.Get(ctx, key.String())
	if err != nil {
		c.logger.Warn("cache substrate read failed", "key", key.String(), "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var p persistedEntry
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("cache substrate entry corrupt", "key", key.String(), "error", err)
		c.deleteBacking(ctx, key)
		return nil, false
	}
	if now.After(p.StoredAt.Add(p.TTL)) {
		c.deleteBacking(ctx, key)
		return nil, false
	}

	c.mu.Lock()
	// Another goroutine may have raced the rehydration; keep whichever
	// entry is already resident.
	if e, ok := c.entries[key]; ok {
		c.touchLocked(e, now)
		val := e.value
		c.mu.Unlock()
		return val, true
	}
	e := &entry{key: key, value: p.Value, storedAt: p.StoredAt, ttl: p.TTL, lastAccessed: now}
	c.entries[key] = e
	c.addToFront(e)
	var evicted *Key
	if len(c.entries) > c.capacity && c.tail != nil {
		k := c.tail.key
		c.removeLocked(c.tail)
		evicted = &k
	}
	c.mu.Unlock()

	if evicted != nil {
		c.deleteBacking(ctx, *evicted)
	}
	return p.Value, true
}

func (c *SpatialCache) putBacking(ctx context.Context, key Key, value []byte, storedAt time.Time, ttl time.Duration) {
	raw, err := json.Marshal(persistedEntry{Value: value, StoredAt: storedAt, TTL: ttl})
	if err != nil {
		c.logger.Warn("cache entry marshal failed", "key", key.String(), "error", err)
		return
	}
	if err := c.backing.Put(ctx, key.String(), raw, ttl); err != nil {
		c.logger.Warn("cache substrate write failed", "key", key.String(), "error", err)
	}
}

func (c *SpatialCache) deleteBacking(ctx context.Context, key Key) {
	if err := c.backing.Delete(ctx, key.String()); err != nil {
		c.logger.Warn("cache substrate delete failed", "key", key.String(), "error", err)
	}
}

// touchLocked refreshes recency for a successful read or overwrite.
func (c *SpatialCache) touchLocked(e *entry, now time.Time) {
	e.lastAccessed = now
	c.moveToFront(e)
}

func (c *SpatialCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *SpatialCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *SpatialCache) removeLocked(e *entry) {
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *SpatialCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}
