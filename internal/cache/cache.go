// Package cache provides a small TTL keyed store used to bound upstream
// call volume across requests. Expiry is enforced lazily at read time;
// there is no background sweeper. The key space is bounded by the distinct
// ZIP/address/state inputs seen, so no size-based eviction is applied.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe string-keyed TTL cache. The clock is injected so
// tests can freeze and advance time deterministically.
//
// Concurrent Get/Set on the same key from parallel in-flight requests may
// both perform the idempotent upstream fetch; the design tolerates the
// redundant call rather than adding single-flight coordination.
type Cache[V any] struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

// New creates an empty cache backed by the given clock.
func New[V any](clock clockwork.Clock) *Cache[V] {
	return &Cache[V]{
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the live value for key. An expired entry is removed and
// reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)}
}

// Len reports the number of stored entries, expired or not. Intended for
// tests and diagnostics.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
