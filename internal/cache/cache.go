// Package cache provides a process-wide in-memory key/value cache with
// optional per-entry TTL. Expiry is checked lazily on read; there is no
// background sweep.
package cache

import (
	"sync"
	"time"
)

// NoExpiry marks an entry that never expires.
const NoExpiry time.Duration = 0

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Cache is a mutex-guarded in-memory store. All operations take the same
// lock, so it is safe for concurrent readers and writers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Set stores a value. A ttl of NoExpiry (or any non-positive duration)
// means the entry never expires; otherwise it expires ttl from now.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// Get retrieves a value. An expired entry is deleted and reported as
// absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether the key exists and has not expired.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}
