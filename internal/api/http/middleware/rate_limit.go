package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a per-client token bucket keyed by the
// authenticated user when available, otherwise by remote address.
// Idle buckets are dropped after an hour.
func RateLimitMiddleware(rps rate.Limit, burst int) gin.HandlerFunc {
	type bucket struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	cleanup := func(now time.Time) {
		for key, b := range buckets {
			if now.Sub(b.lastSeen) > time.Hour {
				delete(buckets, key)
			}
		}
	}

	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = c.ClientIP()
		}

		mu.Lock()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rps, burst)}
			buckets[key] = b
			cleanup(time.Now())
		}
		b.lastSeen = time.Now()
		allowed := b.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
