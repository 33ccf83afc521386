package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"workflowsvc/internal/api/handlers"
	"workflowsvc/pkg/logger"
)

// Recovery turns a panic into a 500 error envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.FromContext(c.Request.Context()).Errorw("Panic while serving request",
			"panic", recovered,
			"path", c.Request.URL.Path,
		)
		handlers.Abort(c, http.StatusInternalServerError, handlers.ErrorTypeUnexpected,
			fmt.Sprintf("Internal server error: %v", recovered))
	})
}
