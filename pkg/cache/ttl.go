package cache

import (
	"sync"
	"time"
)

// TTL is a thread-safe cache whose entries expire after a fixed duration.
// It is constructed explicitly and passed to its consumers, so tests can
// build a fresh instance per case instead of resetting shared module state.
type TTL[K comparable, V any] struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[K]ttlEntry[V]
	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewTTL creates a TTL cache. A non-positive ttl disables caching entirely:
// Get always misses and GetOrCompute always recomputes.
func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:   ttl,
		items: make(map[K]ttlEntry[V]),
		now:   time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	if c.ttl <= 0 {
		var zero V
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. The compute function runs outside the cache lock, so concurrent
// misses for the same key may compute more than once; the last write wins.
// That trade-off keeps slow lookups from serializing unrelated keys.
func (c *TTL[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	c.Set(key, v)
	return v, nil
}

// Delete removes a key from the cache.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Purge removes all entries.
func (c *TTL[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

// Len reports the number of entries, including ones that expired but have
// not been read since.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
