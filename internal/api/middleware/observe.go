package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/logger"
)

// Observe writes one access log line and records HTTP metrics per request
func Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordHTTPRequest(c.Request.Method, route, status, elapsed)
		logger.FromContext(c.Request.Context()).Infow("HTTP request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
