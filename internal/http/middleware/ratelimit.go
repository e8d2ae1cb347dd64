// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, fixed-window rate limiter
// with per-client-address counters and opportunistic garbage collection.
//
// Fixed window, not sliding or token bucket: each key owns a counter and a
// window deadline. The first request from a key, or the first request after
// the deadline passes, resets the counter to 1 and arms a new window. Once
// the counter reaches the cap, further requests inside the window are
// rejected without incrementing. Bursts straddling a window boundary can
// therefore admit close to double the nominal rate; this limiter is abuse
// mitigation and upstream cost control, not a precise quota system.
//
// The limiter is process-local. Horizontally scaled deployments that need a
// global limit should use a shared backend instead.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// keyFunc selects the identity used to key a rate-limit window.
type keyFunc func(*gin.Context) string

// KeyByClientIP keys windows by the caller's network address.
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// window holds one key's counter and its reset deadline.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter implements a per-key fixed-window request limiter.
//
// Windows are created on demand and stored in a map guarded by a mutex.
// Expired entries are evicted opportunistically during lookups to keep
// memory bounded. Safe for concurrent use.
type RateLimiter struct {
	windowLen time.Duration
	max       int
	keyFn     keyFunc

	// now is the clock; injectable for deterministic window-boundary tests.
	now func() time.Time

	mu       sync.Mutex
	windows  map[string]*window
	cleanupN uint64
}

// NewRateLimiter constructs a RateLimiter admitting up to max requests per
// windowLen for each key produced by keyFn. A max <= 0 is coerced to 1.
func NewRateLimiter(windowLen time.Duration, max int, keyFn keyFunc) *RateLimiter {
	if max <= 0 {
		max = 1
	}
	if windowLen <= 0 {
		windowLen = time.Minute
	}
	return &RateLimiter{
		windowLen: windowLen,
		max:       max,
		keyFn:     keyFn,
		now:       time.Now,
		windows:   make(map[string]*window),
	}
}

// SetClock replaces the limiter's time source. Test hook.
func (rl *RateLimiter) SetClock(now func() time.Time) {
	rl.mu.Lock()
	rl.now = now
	rl.mu.Unlock()
}

// Allow records a request for key and reports whether it is admitted.
//
// Semantics:
//   - unknown key, or current time past the stored deadline: counter
//     becomes 1, deadline becomes now+window, request admitted.
//   - counter below cap: increment and admit.
//   - counter at cap: reject without incrementing.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Opportunistic cleanup of expired windows every ~5000 lookups.
	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, w := range rl.windows {
			if now.After(w.resetAt) {
				delete(rl.windows, k)
			}
		}
		rl.cleanupN = 0
	}

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.windowLen)}
		return true
	}
	if w.count >= rl.max {
		return false
	}
	w.count++
	return true
}

// RetryAfter returns the seconds remaining in key's current window, floored
// at 1. Used for the Retry-After response header.
func (rl *RateLimiter) RetryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok {
		return 1
	}
	secs := int(w.resetAt.Sub(rl.now()).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Handler returns a Gin middleware enforcing the fixed-window limit. Rejected
// requests receive a 429 with the standard error envelope and a Retry-After
// header; nothing downstream runs.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.keyFn(c)
		if rl.Allow(key) {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(rl.RetryAfter(key)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "too_many_requests",
			"message":    "Too many requests. Please wait a moment.",
		})
	}
}
