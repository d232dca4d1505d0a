package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridharani/dharani-api/internal/pkg/response"
)

// Middleware enforces the limiter per client IP. Authenticated requests are
// keyed by user ID instead so NAT'd clients don't share a bucket.
func Middleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := c.GetString("userID"); userID != "" {
			key = userID
		}

		if !rl.Allow(key) {
			reset := rl.ResetTime(key)
			response.JSON(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", gin.H{
				"retry_after": time.Until(reset).Seconds(),
				"reset_time":  reset.UTC().Format(time.RFC3339),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
