package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"workflowsvc/internal/domain/workflow"
	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

// WorkflowService is the orchestrator behind /process and /aggregate
type WorkflowService interface {
	Process(ctx context.Context, req workflow.WorkflowRequest) (*workflow.WorkflowResponse, error)
	Aggregate(ctx context.Context, req workflow.AggregateRequest) (*workflow.AggregatedRecommendation, error)
}

// WorkflowHandler serves the video workflow endpoints
type WorkflowHandler struct {
	service WorkflowService
}

func NewWorkflowHandler(service WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Process runs the transcript, analysis and recommendation pipeline for one video
func (h *WorkflowHandler) Process(c *gin.Context) {
	var req workflow.WorkflowRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, "process", err, "Failed to process video")
		return
	}

	resp, err := h.service.Process(c.Request.Context(), req)
	if err != nil {
		writeError(c, "process", err, "Failed to process video")
		return
	}

	metrics.RecordWorkflowRun("process", "success")
	c.JSON(http.StatusOK, resp)
}

// Aggregate synthesizes one recommendation from several per-video results
func (h *WorkflowHandler) Aggregate(c *gin.Context) {
	var req workflow.AggregateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Aggregate(c.Request.Context(), req)
	if err != nil {
		writeError(c, "aggregate", err, "Failed to aggregate recommendations")
		return
	}

	metrics.RecordWorkflowRun("aggregate", "success")
	c.JSON(http.StatusOK, resp)
}

// bindJSON decodes and validates the body, writing 413 or 422 on failure
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	log := logger.FromContext(c.Request.Context())

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		log.Warnw("Request body too large", "limit", tooLarge.Limit)
		Abort(c, http.StatusRequestEntityTooLarge, ErrorTypePayloadTooLarge, "Request body too large")
		return false
	}

	log.Warnw("Request body rejected", "error", err)
	Abort(c, http.StatusUnprocessableEntity, ErrorTypeValidation, validationDetail(err))
	return false
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body: " + err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Namespace()+" failed on '"+fe.Tag()+"'")
	}
	return "Invalid request body: " + strings.Join(parts, "; ")
}

// writeError logs, reports and renders a workflow failure
func writeError(c *gin.Context, operation string, err error, prefix string) {
	ctx := c.Request.Context()
	m := mapError(err, prefix)

	log := logger.FromContext(ctx)
	if m.status >= http.StatusInternalServerError {
		log.ErrorWithContext(ctx, err, map[string]string{
			"operation":  operation,
			"error_type": m.errorType,
		})
	} else {
		log.Infow("Request rejected", "operation", operation, "status", m.status, "error_type", m.errorType, "error", err)
	}

	metrics.RecordWorkflowRun(operation, m.errorType)
	c.AbortWithStatusJSON(m.status, ErrorResponse{
		Detail:    m.detail,
		RequestID: logger.RequestIDFromContext(ctx),
		ErrorType: m.errorType,
		VideoID:   m.videoID,
	})
}
