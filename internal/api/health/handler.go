package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"workflowsvc/internal/api/handlers"
	"workflowsvc/pkg/logger"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	redis       redis.UniversalClient
	providers   func() []string
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. redis may be nil when rate limit
// state is kept in memory; providers lists the configured AI providers.
func New(
	log *logger.Logger,
	redis redis.UniversalClient,
	providers func() []string,
	serviceName string,
	version string,
) *Handler {
	if providers == nil {
		providers = func() []string { return nil }
	}
	return &Handler{
		log:         log,
		redis:       redis,
		providers:   providers,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// Response is the /health success body
type Response struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	RequestID string `json:"request_id"`
}

// HealthStatus represents the overall readiness status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string   `json:"status"`
	ResponseTime string   `json:"response_time,omitempty"`
	Error        string   `json:"error,omitempty"`
	Providers    []string `json:"providers,omitempty"`
}

// HandleHealth reports 200 while at least one AI provider credential is
// configured and 503 otherwise
func (h *Handler) HandleHealth(c *gin.Context) {
	if len(h.providers()) == 0 {
		logger.FromContext(c.Request.Context()).Warn("Health check failed: no AI provider configured")
		handlers.Abort(c, http.StatusServiceUnavailable, "",
			"Service unhealthy: no AI provider credential configured")
		return
	}

	c.JSON(http.StatusOK, Response{
		Status:    statusHealthy,
		Service:   h.serviceName,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]ComponentHealth{
		"ai_providers": h.checkProviders(),
		"redis":        h.checkRedis(ctx),
	}

	allHealthy := true
	for _, check := range checks {
		if check.Status == statusUnhealthy {
			allHealthy = false
		}
	}

	status := HealthStatus{
		Status:    statusHealthy,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = statusUnhealthy
		statusCode = http.StatusServiceUnavailable
		logger.FromContext(ctx).Warnw("Readiness check failed", "checks", checks)
	}

	c.JSON(statusCode, status)
}

func (h *Handler) checkProviders() ComponentHealth {
	names := h.providers()
	if len(names) == 0 {
		return ComponentHealth{Status: statusUnhealthy, Error: "no provider credential configured"}
	}
	return ComponentHealth{Status: statusHealthy, Providers: names}
}

// checkRedis verifies Redis connectivity
func (h *Handler) checkRedis(ctx context.Context) ComponentHealth {
	if h.redis == nil {
		return ComponentHealth{Status: statusDisabled}
	}

	start := time.Now()
	err := h.redis.Ping(ctx).Err()
	elapsed := time.Since(start)

	if err != nil {
		h.log.Errorw("Redis health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       statusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       statusHealthy,
		ResponseTime: elapsed.String(),
	}
}
