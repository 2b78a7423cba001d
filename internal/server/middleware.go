package server

import (
	"net/http"
	"time"

	"auction-service/internal/ratelimit"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// RateLimitMiddleware throttles requests per client IP using the
// injected limiter. Throttled requests get a 429 and never reach the
// bidding service.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			utils.JSONError(c, http.StatusTooManyRequests, "too many bid attempts, please wait before retrying")
			utils.Warn("rate limit exceeded", map[string]any{"client_ip": c.ClientIP()})
			c.Abort()
			return
		}
		c.Next()
	}
}
