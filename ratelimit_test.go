package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_PerKey(t *testing.T) {
	rl := newIPRateLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "other clients have their own bucket")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	rl := newIPRateLimiter(5)
	rl.allow("stale")
	rl.allow("fresh")
	rl.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)

	rl.sweep()

	assert.NotContains(t, rl.limiters, "stale")
	assert.Contains(t, rl.limiters, "fresh")
}

func TestIPRateLimiter_SweeperStops(t *testing.T) {
	rl := newIPRateLimiter(5)
	rl.allow("stale")
	rl.mu.Lock()
	rl.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	done := make(chan struct{})
	rl.startSweeper(5*time.Millisecond, done)

	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.limiters) == 0
	}, time.Second, 5*time.Millisecond)
	close(done)
}

func TestIPRateLimiter_ZeroRateClampedToOne(t *testing.T) {
	rl := newIPRateLimiter(0)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
}
