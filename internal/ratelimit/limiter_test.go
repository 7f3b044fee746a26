package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, cfg), mr
}

func TestLimiterLogin(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, Config{
		MaxLoginAttempts:      3,
		LoginCooldownDuration: time.Minute,
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"))
		require.NoError(t, limiter.IncrementLogin(ctx, "a@x.com", "10.0.0.1"))
	}
	assert.ErrorIs(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"), ErrRateLimited)
	assert.NoError(t, limiter.CheckLogin(ctx, "b@x.com", "10.0.0.1"))

	attempts, err := limiter.Attempts(ctx, "a@x.com", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	mr.FastForward(61 * time.Second)
	assert.NoError(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"))
}

func TestLimiterOtherAddressNotLockedOut(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, Config{
		MaxLoginAttempts:      5,
		LoginCooldownDuration: 15 * time.Minute,
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.IncrementLogin(ctx, "a@x.com", "203.0.113.9"))
	}
	assert.ErrorIs(t, limiter.CheckLogin(ctx, "a@x.com", "203.0.113.9"), ErrRateLimited)
	assert.NoError(t, limiter.CheckLogin(ctx, "a@x.com", "198.51.100.1"))
}

func TestLimiterOtherEmailsDoNotLockSharedAddress(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, Config{
		MaxLoginAttempts:      5,
		LoginCooldownDuration: 15 * time.Minute,
	})

	for _, email := range []string{"typo1@x.com", "typo2@x.com", "typo3@x.com", "typo4@x.com", "typo5@x.com"} {
		require.NoError(t, limiter.IncrementLogin(ctx, email, "10.0.0.1"))
	}
	assert.NoError(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"))
}

func TestLimiterIPThrottle(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, Config{
		MaxLoginAttempts:      2,
		MaxIPAttempts:         3,
		LoginCooldownDuration: time.Minute,
		EnableIPThrottle:      true,
	})

	require.NoError(t, limiter.IncrementLogin(ctx, "a@x.com", "10.0.0.1"))
	require.NoError(t, limiter.IncrementLogin(ctx, "b@x.com", "10.0.0.1"))
	assert.NoError(t, limiter.CheckLogin(ctx, "c@x.com", "10.0.0.1"))

	require.NoError(t, limiter.IncrementLogin(ctx, "d@x.com", "10.0.0.1"))
	assert.ErrorIs(t, limiter.CheckLogin(ctx, "c@x.com", "10.0.0.1"), ErrRateLimited)
	assert.NoError(t, limiter.CheckLogin(ctx, "c@x.com", "10.0.0.2"))
}

func TestLimiterIPBudgetDefaultsAboveAccountBudget(t *testing.T) {
	limiter := New(nil, Config{MaxLoginAttempts: 5})
	assert.Equal(t, 100, limiter.config.MaxIPAttempts)
}

func TestLimiterReset(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldownDuration: time.Minute})

	require.NoError(t, limiter.IncrementLogin(ctx, "a@x.com", "10.0.0.1"))
	assert.ErrorIs(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"), ErrRateLimited)

	require.NoError(t, limiter.ResetLogin(ctx, "a@x.com", "10.0.0.1"))
	assert.NoError(t, limiter.CheckLogin(ctx, "a@x.com", "10.0.0.1"))
}

func TestLimiterDisabled(t *testing.T) {
	ctx := context.Background()
	var nilLimiter *Limiter
	assert.False(t, nilLimiter.Enabled())
	assert.NoError(t, nilLimiter.CheckLogin(ctx, "a@x.com", ""))

	limiter := New(nil, Config{MaxLoginAttempts: 1})
	assert.False(t, limiter.Enabled())
	assert.NoError(t, limiter.IncrementLogin(ctx, "a@x.com", ""))
}

func TestLimiterRedisDown(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldownDuration: time.Minute})
	mr.Close()

	assert.ErrorIs(t, limiter.CheckLogin(ctx, "a@x.com", ""), ErrRedisUnavailable)
}
