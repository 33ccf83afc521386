package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/agents"
	workflowsvc "workflowsvc/internal/services/workflow"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

// Machine-readable error_type values
const (
	ErrorTypeValidation       = "validation_error"
	ErrorTypeInvalidInput     = "invalid_input"
	ErrorTypeProvider         = "provider_error"
	ErrorTypeEmptyOutput      = "empty_agent_output"
	ErrorTypeSchemaViolation  = "schema_violation"
	ErrorTypeUnexpected       = "unexpected_error"
	ErrorTypeTimeout          = "timeout"
	ErrorTypeClientClosed     = "client_closed_request"
	ErrorTypeInternal         = "internal_error"
	ErrorTypePayloadTooLarge  = "payload_too_large"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id"`
	ErrorType string `json:"error_type,omitempty"`
	VideoID   string `json:"video_id,omitempty"`
}

// Abort writes an error envelope and stops the handler chain
func Abort(c *gin.Context, status int, errorType, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Detail:    detail,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
		ErrorType: errorType,
	})
}

// mapped is the HTTP rendering of a workflow error
type mapped struct {
	status    int
	errorType string
	detail    string
	videoID   string
}

// mapError translates the error taxonomy into status codes. prefix is used
// for server-side failures, e.g. "Failed to process video".
func mapError(err error, prefix string) mapped {
	if kind := youtube.ErrorType(err); kind != "" {
		m := mapped{status: http.StatusBadRequest, errorType: kind, detail: rootMessage(err)}
		var terr *youtube.TranscriptError
		if errors.As(err, &terr) {
			m.detail = terr.Error()
			m.videoID = terr.VideoID
		}
		return m
	}

	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr):
		return mapped{status: http.StatusUnprocessableEntity, errorType: ErrorTypeValidation, detail: verr.Error()}
	case errors.Is(err, errors.ErrInvalidInput):
		return mapped{status: http.StatusBadRequest, errorType: ErrorTypeInvalidInput, detail: rootMessage(err)}
	}

	// Everything past this point is a server-side failure; error_type carries the kind
	var perr *agents.ProviderError
	var uerr *agents.UnexpectedError
	errorType := ErrorTypeInternal
	switch {
	case errors.As(err, &perr):
		errorType = ErrorTypeProvider
	case errors.Is(err, agents.ErrSchemaViolation):
		errorType = ErrorTypeSchemaViolation
	case errors.Is(err, agents.ErrEmptyOutput):
		errorType = ErrorTypeEmptyOutput
	case errors.As(err, &uerr):
		errorType = ErrorTypeUnexpected
	case errors.Is(err, context.Canceled):
		errorType = ErrorTypeClientClosed
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, errors.ErrTimeout):
		errorType = ErrorTypeTimeout
	}
	return mapped{status: http.StatusInternalServerError, errorType: errorType, detail: prefix + ": " + err.Error()}
}

// rootMessage drops the stage prefix and the taxonomy suffix so the detail
// reads like the original cause
func rootMessage(err error) string {
	var stageErr *workflowsvc.StageError
	if errors.As(err, &stageErr) {
		err = stageErr.Err
	}
	return strings.TrimSuffix(err.Error(), ": "+errors.ErrInvalidInput.Error())
}
