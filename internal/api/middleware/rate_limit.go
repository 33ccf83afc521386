package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/internal/api/handlers"
	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/logger"
)

// RateLimit admits requests per client address against limiter. When the
// limiter store fails the request is let through and the failure logged.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()

		res, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.FromContext(ctx).Warnw("Rate limiter unavailable, admitting request",
				"scope", scope,
				"client_ip", key,
				"error", err,
			)
			c.Next()
			return
		}

		if !res.Allowed {
			metrics.RecordRateLimitRejection(scope)
			logger.FromContext(ctx).Infow("Rate limit exceeded", "scope", scope, "client_ip", key)

			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			handlers.Abort(c, http.StatusTooManyRequests, "",
				fmt.Sprintf("Rate limit exceeded: %d per 1 minute", limiter.Budget().PerMinute))
			return
		}

		if res.Remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		}
		c.Next()
	}
}
