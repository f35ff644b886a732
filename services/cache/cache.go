// Package cache provides the process-wide response cache used by the data
// access layer to memoize rate-limited upstream calls. Keys follow the
// colon-delimited convention ("stocks:all", "stock:details:{symbol}",
// "alerts:{status}:{symbol}") with a literal "all" segment for unfiltered
// lists.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Recommended TTLs, in minutes, observed for each upstream resource.
const (
	TTLStockList    = 2
	TTLSingleStock  = 1
	TTLStockDetails = 5
	TTLAlertList    = 1
	TTLDividends    = 30
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type inflight struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Cache is an in-memory key/value store with per-entry expiry. Entries are
// evicted lazily: Get treats an expired entry as absent and removes it.
// Instances are independent, so tests and services each get their own.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	inflight map[string]*inflight
	now      func() time.Time
}

// New creates an empty cache using the wall clock.
func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock creates a cache with a custom time source for tests.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries:  make(map[string]*entry),
		inflight: make(map[string]*inflight),
		now:      now,
	}
}

// Get returns the value stored under key if it has not expired. Expired
// entries are dropped and reported as absent.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a fresh Set may have replaced it
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttlMinutes, overwriting any previous entry.
func (c *Cache) Set(key string, value interface{}, ttlMinutes float64) {
	expiresAt := c.now().Add(time.Duration(ttlMinutes * float64(time.Minute)))

	c.mu.Lock()
	c.entries[key] = &entry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete removes the entry for key. Missing keys are a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix and
// returns how many were dropped. Used for coarse invalidation of a whole
// key family ("alerts:", "stock:").
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PruneExpired removes entries whose TTL has elapsed and returns how many
// were dropped. Reads never return expired values, so this only reclaims
// memory.
func (c *Cache) PruneExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			pruned++
		}
	}
	return pruned
}

// Fetch returns the cached value for key, or runs fn to produce it and
// stores the result for ttlMinutes. Concurrent callers for the same key
// share a single outstanding fn call and all receive its result. Errors
// are returned to every waiter and never cached.
func (c *Cache) Fetch(key string, ttlMinutes float64, fn func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.value, f.err
	}
	f := &inflight{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	f.value, f.err = fn()

	c.mu.Lock()
	delete(c.inflight, key)
	if f.err == nil {
		c.entries[key] = &entry{
			value:     f.value,
			expiresAt: c.now().Add(time.Duration(ttlMinutes * float64(time.Minute))),
		}
	}
	c.mu.Unlock()

	close(f.done)
	return f.value, f.err
}
