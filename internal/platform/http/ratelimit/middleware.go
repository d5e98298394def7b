package ratelimit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/platform/http/respond"
	"portfolio_backend/internal/shared/apperr"
)

// MsgTooManyRequests is returned when a client exceeds its limit.
const MsgTooManyRequests = "Too many requests, please try again later"

// Recorder receives rejected requests, e.g. for metrics.
type Recorder interface {
	RateLimitHit(route string)
}

// PerIP limits each client IP to limit requests per window on the wrapped route.
// A nil limiter or a non-positive limit disables the check.
func PerIP(l Limiter, name string, limit int, window time.Duration, rec Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || limit <= 0 {
			c.Next()
			return
		}
		d := l.Allow(name+":ip:"+c.ClientIP(), limit, window)

		remaining := limit - d.Count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !d.WindowEnd.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(d.WindowEnd.Unix(), 10))
		}

		if !d.Allowed {
			if rec != nil {
				rec.RateLimitHit(name)
			}
			if !d.WindowEnd.IsZero() {
				secs := int(time.Until(d.WindowEnd).Seconds()) + 1
				c.Header("Retry-After", strconv.Itoa(secs))
			}
			respond.Error(c, apperr.RateLimited(MsgTooManyRequests))
			return
		}
		c.Next()
	}
}
