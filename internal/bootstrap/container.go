package bootstrap

import (
	"context"
	"sync"

	"workflowsvc/internal/adapters/ai"
	"workflowsvc/internal/adapters/config"
	"workflowsvc/internal/adapters/ratelimit"
	redisclient "workflowsvc/internal/adapters/redis"
	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/agents"
	"workflowsvc/internal/api"
	"workflowsvc/internal/api/health"
	workflowsvc "workflowsvc/internal/services/workflow"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
	"workflowsvc/pkg/templates"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker
	Version      string

	// Infrastructure Layer (optional shared rate limit store)
	Redis *redisclient.Client

	// External Adapters
	Adapters *Adapters

	// Business Logic
	Business *Business

	// Application Layer
	Application *Application

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters groups all external adapters
type Adapters struct {
	Limiters    *ratelimit.Factory
	AIProviders *ai.ProviderRegistry
	Transcripts *youtube.TranscriptService
}

// Business groups business logic components
type Business struct {
	Templates       *templates.Registry
	AgentFactory    *agents.Factory
	Workflow        *workflowsvc.Service
	DefaultProvider string
}

// Application groups application layer components
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
}

// NewContainer creates a new dependency container
func NewContainer(version string) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Version:     version,
		Adapters:    &Adapters{},
		Business:    &Business{},
		Application: &Application{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitAdapters()
	c.MustInitBusiness()
	c.MustInitApplication()
}

// Start starts the HTTP server in the background
func (c *Container) Start() error {
	if c.Application.HTTPServer == nil {
		return errors.Wrap(errors.ErrNotConfigured, "container not initialized")
	}

	c.Log.Info("Starting all systems...")

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Infow("✓ All systems operational", "metrics", c.GetMetrics())
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.usageTracker(),
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

// GetMetrics returns a snapshot for startup logs and debugging
func (c *Container) GetMetrics() map[string]interface{} {
	out := map[string]interface{}{
		"templates": 0,
		"providers": []string{},
	}
	if c.Business.Templates != nil {
		out["templates"] = len(c.Business.Templates.List())
	}
	if c.Adapters.AIProviders != nil {
		out["providers"] = c.Adapters.AIProviders.Names()
	}
	if usage := c.usageTracker(); usage != nil {
		out["tokens_used"] = usage.TotalTokens()
	}
	return out
}

func (c *Container) usageTracker() *agents.UsageTracker {
	if c.Business.AgentFactory == nil {
		return nil
	}
	return c.Business.AgentFactory.Usage()
}
