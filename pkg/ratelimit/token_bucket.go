package ratelimit

import (
	"context"
	"time"
)

// TokenBucket implements a token bucket rate limiter.
// It allows bursts of traffic while maintaining an average rate.
type TokenBucket struct {
	store    Store
	rate     int           // Tokens added per interval
	interval time.Duration // Interval for token refill
	burst    int           // Maximum bucket capacity
}

// TokenBucketOption configures a TokenBucket.
type TokenBucketOption func(*TokenBucket)

// WithBurst sets the maximum burst size (bucket capacity).
func WithBurst(burst int) TokenBucketOption {
	return func(tb *TokenBucket) {
		if burst > 0 {
			tb.burst = burst
		}
	}
}

// NewTokenBucket creates a new token bucket rate limiter. Refill state lives
// in the store, so multiple instances sharing a store agree on the bucket.
func NewTokenBucket(store Store, rate int, interval time.Duration, opts ...TokenBucketOption) (*TokenBucket, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if rate <= 0 {
		return nil, ErrInvalidLimit
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	tb := &TokenBucket{
		store:    store,
		rate:     rate,
		interval: interval,
		burst:    rate, // Default burst equals rate
	}

	for _, opt := range opts {
		opt(tb)
	}

	if tb.burst < tb.rate {
		tb.burst = tb.rate
	}

	return tb, nil
}

// Allow checks if a single request is allowed for the given key.
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Result, error) {
	return tb.AllowN(ctx, key, 1)
}

// AllowN checks if n requests are allowed for the given key.
func (tb *TokenBucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if n <= 0 {
		n = 1
	}

	allowed, remaining, wait, err := tb.store.ConsumeTokens(ctx, key, n, tb.rate, tb.burst, tb.interval)
	if err != nil {
		return nil, err
	}

	if wait <= 0 {
		wait = tb.interval / time.Duration(tb.rate)
	}

	return &Result{
		Allowed:   allowed,
		Limit:     tb.burst,
		Remaining: int(max(0, remaining)),
		ResetAt:   time.Now().Add(wait),
	}, nil
}

// Status returns the current rate limit status without consuming tokens.
func (tb *TokenBucket) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	_, remaining, _, err := tb.store.ConsumeTokens(ctx, key, 0, tb.rate, tb.burst, tb.interval)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   remaining > 0,
		Limit:     tb.burst,
		Remaining: int(max(0, remaining)),
		ResetAt:   time.Now().Add(tb.interval / time.Duration(tb.rate)),
	}, nil
}

// Reset resets the rate limit for the given key.
func (tb *TokenBucket) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	return tb.store.Delete(ctx, key)
}
