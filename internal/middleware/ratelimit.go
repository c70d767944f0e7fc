// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxLimiters bounds the number of tracked clients.
const maxLimiters = 10000

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// SubmitRateLimiter limits form submissions per client IP. Safe methods are
// not limited.
type SubmitRateLimiter struct {
	cache   *limiterCache[string]
	logger  *slog.Logger
	message func(*http.Request) string
}

// NewSubmitRateLimiter allows rps submissions per second with the given
// burst.
func NewSubmitRateLimiter(rps float64, burst int, logger *slog.Logger) *SubmitRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitRateLimiter{
		cache:  newLimiterCache[string](rps, burst),
		logger: logger,
	}
}

// SetMessage sets the function producing the 429 response text, typically a
// translation in the request language.
func (rl *SubmitRateLimiter) SetMessage(fn func(*http.Request) string) {
	rl.message = fn
}

// Middleware returns the rate limiting middleware. Rejected requests get a
// plain text 429.
func (rl *SubmitRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if rl.cache.clearIfExceeds(maxLimiters) {
				rl.logger.Info("submit limiter cache cleared", "size", maxLimiters)
			}

			ip := clientIP(r)
			if !rl.cache.get(ip).Allow() {
				rl.logger.Warn("submit rate limit exceeded", "ip", ip, "path", r.URL.Path)
				msg := "Too many requests. Please wait a moment and try again."
				if rl.message != nil {
					msg = rl.message(r)
				}
				w.Header().Set("Retry-After", "1")
				http.Error(w, msg, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
