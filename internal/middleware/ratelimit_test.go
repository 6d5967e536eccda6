package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimitEnvBypass(t *testing.T) {
	for _, env := range []string{"test", "development", ""} {
		t.Run("env="+env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)

			// nil client on purpose: the bypass must not touch Redis
			allowed, err := CheckRateLimit(context.Background(), nil, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimitNilClientInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	allowed, err := CheckRateLimit(context.Background(), nil, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimitEnforcesWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newMiniredisClient(t)

	const limit = 10
	for i := 0; i < limit; i++ {
		allowed, err := CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", limit, 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be within the limit", i+1)
	}

	allowed, err := CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", limit, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be rejected")
}

func TestCheckRateLimitIsolatesCallers(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newMiniredisClient(t)

	allowed, err := CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different IP has its own counter.
	allowed, err = CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:5.6.7.8", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimitWindowExpiry(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	allowed, err := CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, err = CheckRateLimit(context.Background(), rdb, "mentor_request", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "counter should reset after the window expires")
}
