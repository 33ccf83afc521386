package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workflowsvc/pkg/logger"
)

// RequestIDHeader carries the correlation identifier in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation identifier. An incoming
// X-Request-ID is honoured when it is a UUID; anything else is replaced.
// The identifier and a request-scoped logger travel in the request context.
func RequestID(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil || id == "" {
			id = uuid.NewString()
		}

		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), base, id))
		c.Next()
	}
}
