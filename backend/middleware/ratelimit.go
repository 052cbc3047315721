// ABOUTME: Rate limiting middleware backed by per-key token buckets
// ABOUTME: Protects the login form from credential stuffing, keyed by client IP

package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket is one key's limiter plus the last time it was used
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows limit requests per window for each key, refilling
// continuously. Each unique key gets an independent bucket.
type RateLimiter struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	every        rate.Limit
	burst        int
	idle         time.Duration
	sweepCounter int // tracks new buckets created; triggers sweep every 100
	now          func() time.Time
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		idle:    window,
		now:     time.Now,
	}
}

// Allow checks whether a request for the given key should be permitted.
// Returns true if within limits, or false with the wait until a token is available.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[key] = b

		// Bounds memory to active keys + 100 stale entries
		rl.sweepCounter++
		if rl.sweepCounter >= 100 {
			rl.sweep(now)
			rl.sweepCounter = 0
		}
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep removes buckets idle for longer than one window; a full bucket is
// equivalent to a fresh one. Must be called while holding rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.idle {
			delete(rl.buckets, k)
		}
	}
}

// ClientIP extracts the client IP from X-Forwarded-For (leftmost) or RemoteAddr.
// This trusts the X-Forwarded-For header, which is safe only behind a
// reverse proxy that sets it.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// RateLimit returns middleware that enforces rate limits using the given limiter and key function.
// If limiter is nil, the middleware is a no-op (disabled mode).
// If keyFunc returns an empty string, the request passes through (unidentifiable client).
// Only POST requests are counted so the login form can always be displayed.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || keyFunc == nil || r.Method != http.MethodPost {
				next(w, r)
				return
			}

			key := keyFunc(r)
			if key == "" {
				next(w, r)
				return
			}

			allowed, retryAfter := limiter.Allow(key)
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			slog.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path, "retry_after", retrySeconds)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":       "Rate limit exceeded",
				"retry_after": retrySeconds,
			})
		}
	}
}
