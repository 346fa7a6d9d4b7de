package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements an in-memory Store. It backs all three algorithms
// and is intended for tests and single-node deployments; production uses
// RedisStore so every node shares one set of counters.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	windows  map[string]*timestampWindow
	buckets  map[string]*tokenState

	cleanupInterval time.Duration
	initialCapacity int
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
	now             func() time.Time
}

type counter struct {
	count     int64
	expiresAt time.Time
}

type timestampWindow struct {
	timestamps []time.Time
}

type tokenState struct {
	tokens float64
	last   time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for expired entries.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithInitialCapacity sets the initial capacity for sliding window timestamps.
func WithInitialCapacity(capacity int) MemoryStoreOption {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.initialCapacity = capacity
		}
	}
}

// NewMemoryStore creates a new in-memory store with automatic cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		counters:        make(map[string]*counter),
		windows:         make(map[string]*timestampWindow),
		buckets:         make(map[string]*tokenState),
		cleanupInterval: 1 * time.Minute,
		initialCapacity: 100,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// IncrementAndGet atomically increments the fixed-window counter.
func (s *MemoryStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, exists := s.counters[key]

	// Create new counter or reset if expired
	if !exists || now.After(c.expiresAt) {
		c = &counter{
			count:     int64(incr),
			expiresAt: now.Add(window),
		}
		s.counters[key] = c
		return c.count, window, nil
	}

	c.count += int64(incr)
	return c.count, c.expiresAt.Sub(now), nil
}

// Get returns the current fixed-window counter value.
func (s *MemoryStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.counters[key]
	if !exists {
		return 0, 0, nil
	}

	now := s.now()
	if now.After(c.expiresAt) {
		return 0, 0, nil
	}

	return c.count, c.expiresAt.Sub(now), nil
}

// Delete removes the given key from all algorithm state.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
	delete(s.windows, key)
	delete(s.buckets, key)
	return nil
}

// RecordIfAllowed atomically checks the sliding window count and records
// n timestamps when under limit.
func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw, exists := s.windows[key]
	if !exists {
		sw = &timestampWindow{timestamps: make([]time.Time, 0, s.initialCapacity)}
		s.windows[key] = sw
	}

	sw.prune(now.Add(-window))
	count := int64(len(sw.timestamps))

	if count+int64(n) > int64(limit) {
		return false, count, nil
	}

	for range n {
		sw.timestamps = append(sw.timestamps, now)
	}
	return true, count + int64(n), nil
}

// CountInWindow returns the number of timestamps within the sliding window.
func (s *MemoryStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw, exists := s.windows[key]
	if !exists {
		return 0, nil
	}

	sw.prune(s.now().Add(-window))
	return int64(len(sw.timestamps)), nil
}

// ConsumeTokens refills the bucket by elapsed time and consumes n tokens
// if available. With n=0 it only peeks at the refilled balance.
func (s *MemoryStore) ConsumeTokens(ctx context.Context, key string, n, rate, burst int, interval time.Duration) (bool, int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, exists := s.buckets[key]
	if !exists {
		b = &tokenState{tokens: float64(burst), last: now}
		s.buckets[key] = b
	}

	elapsed := now.Sub(b.last)
	if elapsed > 0 {
		b.tokens = min(float64(burst), b.tokens+elapsed.Seconds()*float64(rate)/interval.Seconds())
		b.last = now
	}

	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true, int64(b.tokens), 0, nil
	}

	// Time until enough tokens accumulate for n.
	deficit := float64(n) - b.tokens
	wait := time.Duration(deficit * float64(interval) / float64(rate))
	return false, int64(b.tokens), wait, nil
}

func (w *timestampWindow) prune(cutoff time.Time) {
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}

// cleanupLoop runs periodically to remove expired entries.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes expired counters, empty windows and idle buckets.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	for key, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, key)
		}
	}

	for key, sw := range s.windows {
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
		}
	}

	for key, b := range s.buckets {
		if now.Sub(b.last) > s.cleanupInterval*2 {
			delete(s.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
