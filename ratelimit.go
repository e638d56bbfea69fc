package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. Buckets idle for more
// than idleTTL are dropped by sweep.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newIPRateLimiter allows perMinute requests per IP, with bursts of the same size.
// perMinute below 1 is treated as 1.
func newIPRateLimiter(perMinute int) *ipRateLimiter {
	perMinute = max(perMinute, 1)
	return &ipRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
	}
}

func (rl *ipRateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// sweep removes limiters that haven't been used within idleTTL.
func (rl *ipRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-rl.idleTTL)
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// startSweeper runs sweep every interval until done is closed.
func (rl *ipRateLimiter) startSweeper(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-done:
				return
			}
		}
	}()
}

// middleware rejects requests over the limit with 429.
func (rl *ipRateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.allow(ip) {
			log.WithFields(log.Fields{"ip": ip, "path": c.Request.URL.Path}).Warn("rate limit exceeded")
			apiError(c, http.StatusTooManyRequests, "too many requests, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
