package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopgrid/shopgrid/pkg/ratelimit"
)

func TestSlidingWindow_Validation(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	_, err := ratelimit.NewSlidingWindow(nil, 10, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.NewSlidingWindow(store, 0, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.NewSlidingWindow(store, 10, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidInterval)

	sw, err := ratelimit.NewSlidingWindow(store, 10, time.Minute)
	require.NoError(t, err)

	_, err = sw.Allow(context.Background(), "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}

func TestSlidingWindow_RemainingMonotonic(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	sw, err := ratelimit.NewSlidingWindow(store, 5, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	prev := 5
	for i := range 8 {
		res, err := sw.Allow(ctx, "k")
		require.NoError(t, err)

		assert.Equal(t, 5, res.Limit)
		assert.LessOrEqual(t, res.Remaining, prev, "remaining never increases within a window")
		assert.GreaterOrEqual(t, res.Remaining, 0, "remaining never negative")
		assert.Equal(t, i >= 5, res.Blocked())
		prev = res.Remaining
	}
}

func TestSlidingWindow_KeysIsolated(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	sw, err := ratelimit.NewSlidingWindow(store, 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	res, err := sw.Allow(ctx, "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = sw.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Blocked())

	res, err = sw.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "limits are per key")
}

func TestSlidingWindow_StatusDoesNotConsume(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	sw, err := ratelimit.NewSlidingWindow(store, 3, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	for range 5 {
		res, err := sw.Status(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Remaining)
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	sw, err := ratelimit.NewSlidingWindow(store, 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = sw.Allow(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, sw.Reset(ctx, "k"))

	res, err := sw.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
