package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PublicStatusRateLimit throttles the unauthenticated status endpoint per
// client IP. When Redis is not configured the limiter is a no-op.
func (s *Server) PublicStatusRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.statusLimiter == nil || !s.statusLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.statusLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// A limiter outage never takes the endpoint down with it.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func (s *Server) PublicStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "routewise",
	})
}
