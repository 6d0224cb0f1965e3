// Package quotecache provides the TTL-bounded cache fronting the external
// quote provider.
package quotecache

import (
	"sync"
	"time"
)

// Cache maps string keys to immutable values with per-entry expiry. Entries
// expire purely by time; callers never invalidate.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache is a process-wide, mutex-guarded TTL cache. Get and Set are
// atomic per key; last-writer-wins is fine because values are idempotent
// recomputations of the same external fact.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		// Expired entries are dropped lazily on the next read.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL.
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// SetIfAbsent stores value only when no live entry exists for key. It returns
// true when the value was stored. This is the check-and-set primitive behind
// the scan sentinel.
func (c *MemoryCache) SetIfAbsent(key string, value interface{}, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !c.now().After(e.expiresAt) {
		return false
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return true
}

// Len reports the number of entries, including any not yet lazily evicted.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
