package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/dto"
	"github.com/talaria-app/talaria/internal/service"
)

// RateLimitMiddleware throttles requests per athlete through the Redis
// sliding window. A limiter outage fails open; throttling sync is not worth
// refusing it.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("sync:athlete:%d", c.GetInt64("athlete_id"))

		allowed, retryAfter, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: fmt.Sprintf("Rate limit exceeded, try again in %v", retryAfter.Round(time.Second)),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
