package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"workflowsvc/internal/adapters/ai"
	"workflowsvc/internal/adapters/config"
	errnoop "workflowsvc/internal/adapters/errors/noop"
	"workflowsvc/internal/adapters/errors/sentry"
	"workflowsvc/internal/adapters/ratelimit"
	redisclient "workflowsvc/internal/adapters/redis"
	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/agents"
	"workflowsvc/internal/api"
	"workflowsvc/internal/api/handlers"
	"workflowsvc/internal/api/health"
	"workflowsvc/internal/metrics"
	"workflowsvc/internal/prompts"
	workflowsvc "workflowsvc/internal/services/workflow"
	"workflowsvc/internal/trace"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
	"workflowsvc/pkg/templates"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, c.Version, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Version, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
	c.Lifecycle.SetShutdownTimeout(cfg.HTTP.ShutdownTimeout)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure sets up tracing, metrics and the optional Redis store
func (c *Container) MustInitInfrastructure() {
	if err := trace.Init(c.Config.Tracing, c.Config.App.Name, c.Version); err != nil {
		c.Log.Fatalf("failed to init tracing: %v", err)
	}
	if trace.Enabled() {
		c.Log.Infow("✓ Tracing enabled", "sample_ratio", c.Config.Tracing.SampleRatio)
	}

	metrics.Init()

	if !c.Config.Redis.Enabled() {
		c.Log.Info("Redis not configured, rate limits are kept per process")
		return
	}

	c.Log.Infow("Connecting to Redis...", "addr", c.Config.Redis.Addr())
	client, err := redisclient.NewClient(c.Context, c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("failed to connect redis: %v", err)
	}
	c.Redis = client
	c.Log.Info("✓ Redis connected")
}

// ========================================
// Phase 3: External Adapters
// ========================================

// MustInitAdapters creates rate limiters, AI providers and the transcript adapter
func (c *Container) MustInitAdapters() {
	c.Adapters.Limiters = ratelimit.NewFactory(c.redisScripter())

	registry, err := ai.BuildRegistry(c.Context, c.Config.AI, c.Adapters.Limiters, ai.Endpoints{})
	switch {
	case errors.Is(err, errors.ErrNotConfigured):
		c.Log.Warnw("No AI provider configured, /health will report unhealthy", "error", err)
		_ = c.ErrorTracker.CaptureMessage(c.Context, "no AI provider credential configured", errors.LevelWarning, nil)
	case err != nil:
		c.Log.Fatalf("failed to build AI providers: %v", err)
	}
	c.Adapters.AIProviders = registry
	c.Log.Infow("✓ AI providers initialized", "providers", registry.Names())

	client := youtube.NewClient(youtube.Config{
		BaseURL: c.Config.Transcript.BaseURL,
		Timeout: c.Config.Transcript.Timeout,
	})
	c.Adapters.Transcripts = youtube.NewTranscriptService(client, c.Config.Transcript.Languages)
	c.Log.Infow("✓ Transcript adapter initialized", "languages", c.Config.Transcript.Languages)

	collector := metrics.NewCustomCollector(c.Log, c.redisUniversal(), registry.Names)
	if err := metrics.RegisterCustomCollector(collector); err != nil {
		c.Log.Warnw("Failed to register custom collector", "error", err)
	}
}

// ========================================
// Phase 4: Business Logic
// ========================================

// MustInitBusiness builds the templates, agents and the workflow service
func (c *Container) MustInitBusiness() {
	var err error

	c.Business.Templates, err = templates.NewRegistry(c.Config.Templates.OverrideDir)
	if err != nil {
		c.Log.Fatalf("failed to load prompt templates: %v", err)
	}

	provider := provideDefaultProvider(c.Adapters.AIProviders)
	c.Business.DefaultProvider = provider.Name()

	c.Business.AgentFactory, err = agents.NewFactory(agents.FactoryDeps{
		Provider:  provider,
		Templates: c.Business.Templates,
		Configs:   provideAgentConfigs(c.Config.AI, provider.Name(), c.Log),
	})
	if err != nil {
		c.Log.Fatalf("failed to create agent factory: %v", err)
	}

	analysis, err := c.Business.AgentFactory.NewAnalysisAgent()
	if err != nil {
		c.Log.Fatalf("failed to create analysis agent: %v", err)
	}
	recommendation, err := c.Business.AgentFactory.NewRecommendationAgent()
	if err != nil {
		c.Log.Fatalf("failed to create recommendation agent: %v", err)
	}
	aggregate, err := c.Business.AgentFactory.NewAggregateAgent()
	if err != nil {
		c.Log.Fatalf("failed to create aggregate agent: %v", err)
	}

	c.Business.Workflow, err = workflowsvc.NewService(workflowsvc.Deps{
		Transcripts:    c.Adapters.Transcripts,
		Analysis:       analysis,
		Recommendation: recommendation,
		Aggregate:      aggregate,
		Prompts:        prompts.NewBuilder(c.Business.Templates),
	})
	if err != nil {
		c.Log.Fatalf("failed to create workflow service: %v", err)
	}

	c.Log.Infow("✓ Workflow service initialized",
		"provider", c.Business.DefaultProvider,
		"templates", len(c.Business.Templates.List()),
	)
}

// ========================================
// Phase 5: Application Layer
// ========================================

// MustInitApplication builds the router and the HTTP server
func (c *Container) MustInitApplication() {
	c.Application.HealthHandler = health.New(
		c.Log,
		c.redisUniversal(),
		c.Adapters.AIProviders.Names,
		c.Config.App.Name,
		c.Version,
	)

	router := api.NewRouter(api.RouterDeps{
		Log:       c.Log,
		HTTP:      c.Config.HTTP,
		RateLimit: c.Config.RateLimit,
		Limiters:  c.Adapters.Limiters,
		Workflow:  handlers.NewWorkflowHandler(c.Business.Workflow),
		Health:    c.Application.HealthHandler,
	})

	c.Application.HTTPServer = api.NewServer(c.Config.HTTP, router, c.Log)
}

// redisScripter returns nil unless Redis is connected, so limiters fall back to memory
func (c *Container) redisScripter() redis.Scripter {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Client()
}

func (c *Container) redisUniversal() redis.UniversalClient {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Client()
}

func provideErrorTracker(cfg *config.Config, version string, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

// provideDefaultProvider picks the registry default, or a stand-in that
// fails every call when no credential is configured
func provideDefaultProvider(registry *ai.ProviderRegistry) ai.Provider {
	if registry == nil {
		return ai.UnconfiguredProvider{}
	}
	provider, err := registry.Default()
	if err != nil {
		return ai.UnconfiguredProvider{}
	}
	return provider
}

// provideAgentConfigs fills agent models from config, swapping models the
// selected provider cannot serve for that provider's default
func provideAgentConfigs(cfg config.AIConfig, providerName string, log *logger.Logger) map[agents.AgentType]agents.AgentConfig {
	configs := agents.ConfigsFromAI(cfg)
	for typ, agentCfg := range configs {
		model := ai.ModelFor(providerName, agentCfg.Model)
		if model != agentCfg.Model {
			log.Warnw("Configured model does not match provider, using provider default",
				"agent", agentCfg.Name,
				"provider", providerName,
				"configured", agentCfg.Model,
				"using", model,
			)
			agentCfg.Model = model
			configs[typ] = agentCfg
		}
	}
	return configs
}
