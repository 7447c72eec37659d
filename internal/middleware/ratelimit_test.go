package middleware

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))

	// Buckets are per IP
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Greater(t, rl.GetRetryAfter("1.2.3.4"), 0)
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Limit: 5, Window: time.Minute})

	for i := 0; i < 1000; i++ {
		ip := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
		require.True(t, rl.Allow(ip))
	}

	rl.mu.RLock()
	size := len(rl.buckets)
	rl.mu.RUnlock()
	require.Equal(t, 1000, size)

	// Backdate every bucket past a full window, then run one eviction pass
	stale := time.Now().Add(-2 * time.Minute)
	rl.mu.Lock()
	for _, bucket := range rl.buckets {
		bucket.lastRefill = stale
	}
	rl.mu.Unlock()

	rl.evictIdle(time.Now())

	rl.mu.RLock()
	size = len(rl.buckets)
	rl.mu.RUnlock()
	assert.Equal(t, 0, size, "idle buckets must be evicted, not retained forever")

	// The limiter keeps working after eviction
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_EvictionSparesActiveBuckets(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Limit: 5, Window: time.Minute})

	require.True(t, rl.Allow("stale-ip"))
	require.True(t, rl.Allow("active-ip"))

	rl.mu.Lock()
	rl.buckets["stale-ip"].lastRefill = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	rl.evictIdle(time.Now())

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.buckets, "stale-ip")
	assert.Contains(t, rl.buckets, "active-ip")
}
