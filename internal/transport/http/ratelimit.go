package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// rateLimiter caps message sends per user within a fixed window.
// A limit of zero disables it.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	counters map[string]int
	resetAt  time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit:    limit,
		window:   window,
		counters: make(map[string]int),
		resetAt:  time.Now().Add(window),
	}
}

func (r *rateLimiter) allow(userID string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if now := time.Now(); now.After(r.resetAt) {
		r.counters = make(map[string]int)
		r.resetAt = now.Add(r.window)
	}

	r.counters[userID]++
	return r.counters[userID] <= r.limit
}

// RateLimitMiddleware rejects requests over the per-user send limit.
// Must run after AuthMiddleware so the user id is in the context.
func RateLimitMiddleware(limiter *rateLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextKeyUserID)
		if !limiter.allow(userID) {
			logger.Warn().Str("user_id", userID).Msg("send rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
