package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event-chat-service/internal/observability"
	"event-chat-service/internal/ratelimit"
)

// RateLimit guards a high-frequency route with the shared admission
// controller. Keys are per authenticated user, falling back to client IP.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := c.GetInt(ContextUserID); userID != 0 {
			key = "user:" + strconv.Itoa(userID)
		}

		if !limiter.Allow(key) {
			observability.IncRateLimited("http")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
