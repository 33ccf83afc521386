package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"workflowsvc/internal/adapters/config"
	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/internal/api/handlers"
	"workflowsvc/internal/api/health"
	"workflowsvc/internal/api/middleware"
	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/logger"
)

// Rate limit scopes, also used as Redis key prefixes
const (
	ScopeProcess = "http:process"
	ScopeHealth  = "http:health"
)

// RouterDeps contains everything the HTTP surface needs
type RouterDeps struct {
	Log       *logger.Logger
	HTTP      config.HTTPConfig
	RateLimit config.RateLimitConfig
	Limiters  *ratelimit.Factory
	Workflow  *handlers.WorkflowHandler
	Health    *health.Handler
}

// NewRouter wires middleware and routes
func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// ClientIP keys the rate limiter, so forwarding headers count only from configured proxies
	if err := r.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
		deps.Log.Warnw("Invalid trusted proxies, forwarding headers ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestID(deps.Log),
		middleware.Observe(),
		middleware.Recovery(),
		cors.New(corsConfig(deps.HTTP)),
	)

	processLimit := deps.limiter(ScopeProcess, deps.RateLimit.ProcessPerMinute)
	healthLimit := deps.limiter(ScopeHealth, deps.RateLimit.HealthPerMinute)
	bodyLimit := middleware.BodyLimit(deps.HTTP.MaxBodyBytes)

	r.GET("/health", middleware.RateLimit(healthLimit, ScopeHealth), deps.Health.HandleHealth)
	r.GET("/ready", deps.Health.HandleReadiness)
	r.GET("/live", deps.Health.HandleLiveness)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/process", middleware.RateLimit(processLimit, ScopeProcess), bodyLimit, deps.Workflow.Process)
	r.POST("/aggregate", middleware.RateLimit(processLimit, ScopeProcess), bodyLimit, deps.Workflow.Aggregate)

	r.NoRoute(func(c *gin.Context) {
		handlers.Abort(c, http.StatusNotFound, "", "Not Found")
	})

	return r
}

func (d RouterDeps) limiter(scope string, perMinute int) ratelimit.Limiter {
	if !d.RateLimit.Enabled || d.Limiters == nil {
		return ratelimit.NoOpLimiter{}
	}
	return d.Limiters.Create(scope, ratelimit.Budget{PerMinute: perMinute})
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowsAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return c
}
