package contact

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &RateLimiter{Redis: client}, mr
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < submitMaxAttempts; i++ {
		ok, _, err := rl.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, retry, err := rl.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, submitAttemptTTL)

	// Other clients are unaffected.
	ok, _, err = rl.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(submitAttemptTTL + time.Second)
	ok, _, err = rl.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i <= submitMaxAttempts; i++ {
		_, _, _ = rl.Allow(ctx, "203.0.113.7")
	}
	rl.Reset(ctx, "203.0.113.7")

	ok, _, err := rl.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_EmptyIP(t *testing.T) {
	rl, mr := newTestLimiter(t)
	ok, _, err := rl.Allow(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mr.Keys())
}
