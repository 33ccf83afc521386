package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workflowsvc/internal/api/handlers"
	"workflowsvc/pkg/logger"
)

// BodyLimit rejects bodies larger than maxBytes with 413. Declared lengths are
// checked up front; undeclared ones are cut off while decoding.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			logger.FromContext(c.Request.Context()).Warnw("Request body too large",
				"content_length", c.Request.ContentLength,
				"limit", maxBytes,
			)
			handlers.Abort(c, http.StatusRequestEntityTooLarge, handlers.ErrorTypePayloadTooLarge, "Request body too large")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
