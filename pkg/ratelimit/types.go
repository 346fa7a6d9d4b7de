package ratelimit

import (
	"context"
	"time"
)

// Result contains the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	// Never negative.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time

	// Reason names the layer that rejected the request, or marks a degraded
	// fail-open decision. Empty when every layer passed cleanly.
	Reason string
}

// Blocked reports whether the request was rejected.
func (r *Result) Blocked() bool {
	return !r.Allowed
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter defines the interface for rate limiting implementations.
type Limiter interface {
	// Allow checks if a single request is allowed for the given key.
	// If allowed, it consumes one token/slot.
	Allow(ctx context.Context, key string) (*Result, error)

	// AllowN checks if n requests are allowed for the given key.
	// If allowed, it consumes n tokens/slots.
	AllowN(ctx context.Context, key string, n int) (*Result, error)

	// Status returns the current rate limit status for the given key
	// without consuming any tokens/slots.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset resets the rate limit for the given key.
	Reset(ctx context.Context, key string) error
}

// Store defines the interface for rate limit storage backends. All three
// algorithms share one store so a single Redis connection backs the whole
// layered limiter.
type Store interface {
	// IncrementAndGet atomically increments the fixed-window counter for the
	// given key, creating it with the window TTL, and returns the new value
	// along with the remaining TTL.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (current int64, ttl time.Duration, err error)

	// Get returns the current counter value and TTL for the given key.
	Get(ctx context.Context, key string) (current int64, ttl time.Duration, err error)

	// Delete removes the given key from the store.
	Delete(ctx context.Context, key string) error

	// RecordIfAllowed atomically counts live timestamps in the sliding
	// window and records n new ones when the count stays within limit.
	// Returns whether the timestamps were recorded and the final count.
	RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit, n int) (allowed bool, count int64, err error)

	// CountInWindow returns the number of timestamps within the sliding window.
	CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error)

	// ConsumeTokens refills the token bucket by elapsed time at rate per
	// interval, capped at burst, then consumes n tokens if available.
	// With n=0 it only peeks. The returned wait is how long until n tokens
	// become available; zero when allowed.
	ConsumeTokens(ctx context.Context, key string, n, rate, burst int, interval time.Duration) (allowed bool, remaining int64, wait time.Duration, err error)
}
