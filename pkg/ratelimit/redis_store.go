package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua keeps each check to a single atomic round trip, so concurrent
// requests across server nodes never double-spend a window slot.
var (
	incrementScript = redis.NewScript(`
local current = redis.call('INCRBY', KEYS[1], ARGV[1])
if current == tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

	recordScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local n = tonumber(ARGV[4])
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
local count = redis.call('ZCARD', KEYS[1])
if count + n > limit then
	return {0, count}
end
for i = 1, n do
	redis.call('ZADD', KEYS[1], now, now .. '-' .. i .. '-' .. ARGV[5])
end
redis.call('PEXPIRE', KEYS[1], math.ceil(window / 1000))
return {1, count + n}
`)

	countScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
return redis.call('ZCARD', KEYS[1])
`)

	consumeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local n = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local burst = tonumber(ARGV[4])
local interval = tonumber(ARGV[5])
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil then
	tokens = burst
	ts = now
end
local elapsed = math.max(0, now - ts)
tokens = math.min(burst, tokens + elapsed * rate / interval)
local allowed = 0
local wait = 0
if n > 0 and tokens >= n then
	tokens = tokens - n
	allowed = 1
elseif n > 0 then
	wait = math.ceil((n - tokens) * interval / rate)
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], interval * 2)
return {allowed, math.floor(tokens), wait}
`)
)

// RedisStore implements Store on Redis. One store instance is shared by all
// layers of the limiter so every server node sees the same counters.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the namespace prefix for all stored keys.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// IncrementAndGet atomically increments the fixed-window counter.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrementScript.Run(ctx, s.client, []string{s.key(key)}, incr, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: increment %q: %w", key, err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("ratelimit: increment %q: unexpected reply", key)
	}
	return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}

// Get returns the current counter value and TTL for the given key.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("ratelimit: get %q: %w", key, err)
	}

	current, err := getCmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: get %q: %w", key, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return current, ttl, nil
}

// Delete removes the given key from the store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: delete %q: %w", key, err)
	}
	return nil
}

// RecordIfAllowed atomically checks the sliding window count and records
// n timestamps when under limit.
func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	vals, err := recordScript.Run(ctx, s.client, []string{s.key(key)},
		now.UnixMicro(), window.Microseconds(), limit, n, now.UnixNano()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: record %q: %w", key, err)
	}
	if len(vals) != 2 {
		return false, 0, fmt.Errorf("ratelimit: record %q: unexpected reply", key)
	}
	return vals[0] == 1, vals[1], nil
}

// CountInWindow returns the number of timestamps within the sliding window.
func (s *RedisStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := countScript.Run(ctx, s.client, []string{s.key(key)},
		time.Now().UnixMicro(), window.Microseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: count %q: %w", key, err)
	}
	return count, nil
}

// ConsumeTokens refills the token bucket by elapsed time and consumes n
// tokens if available.
func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, n, rate, burst int, interval time.Duration) (bool, int64, time.Duration, error) {
	vals, err := consumeScript.Run(ctx, s.client, []string{s.key(key)},
		time.Now().UnixMilli(), n, rate, burst, interval.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("ratelimit: consume %q: %w", key, err)
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("ratelimit: consume %q: unexpected reply", key)
	}
	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}
