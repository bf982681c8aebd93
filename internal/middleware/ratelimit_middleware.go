package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"

	"github.com/vitrine/pedidos_api/internal/utils"
)

// RateLimiter is a fixed-window per-key limiter used on checkout.
type RateLimiter struct {
	mu       sync.Mutex
	clock    clock.Clock
	limit    int
	window   time.Duration
	attempts map[string]*attemptInfo
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewRateLimiter allows limit attempts per key within window.
func NewRateLimiter(clk clock.Clock, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clock:    clk,
		limit:    limit,
		window:   window,
		attempts: make(map[string]*attemptInfo),
	}
}

// Allow checks if key can make another attempt.
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	info, exists := r.attempts[key]
	if !exists || now.Sub(info.firstAt) >= r.window {
		r.attempts[key] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

// Cleanup drops expired windows every interval until ctx is cancelled.
func (r *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := r.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune()
		}
	}
}

func (r *RateLimiter) prune() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	for key, info := range r.attempts {
		if now.Sub(info.firstAt) >= r.window {
			delete(r.attempts, key)
		}
	}
}

// Handle returns a Gin middleware that limits requests per client IP.
func (r *RateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many orders, try again shortly")
			c.Abort()
			return
		}
		c.Next()
	}
}
