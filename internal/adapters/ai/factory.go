package ai

import (
	"context"
	"strings"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v3/option"

	"workflowsvc/internal/adapters/config"
	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

// Endpoints overrides provider base URLs. Empty fields use the SDK defaults.
type Endpoints struct {
	OpenAI string
	Gemini string
	Claude string
}

// BuildRegistry initializes a ProviderRegistry with every provider that has a key.
// limiters decides whether outbound budgets are shared through Redis (multi-pod)
// or kept in process memory (single pod).
// With no keys configured the registry is returned empty together with
// errors.ErrNotConfigured so the service can still start and report unhealthy.
func BuildRegistry(ctx context.Context, cfg config.AIConfig, limiters *ratelimit.Factory, endpoints Endpoints) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()
	if limiters == nil {
		limiters = ratelimit.NewFactory(nil)
	}

	if cfg.OpenAIKey != "" {
		limiter := limiters.Create("ai:"+ProviderNameOpenAI.String(), ratelimit.Budget{PerMinute: cfg.OpenAIRequestsPerMinute})
		var opts []openaioption.RequestOption
		if endpoints.OpenAI != "" {
			opts = append(opts, openaioption.WithBaseURL(endpoints.OpenAI))
		}
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, cfg.Timeout, limiter, opts...)); err != nil {
			return nil, err
		}
	}

	if cfg.GeminiKey != "" {
		limiter := limiters.Create("ai:"+ProviderNameGemini.String(), ratelimit.Budget{PerMinute: cfg.GeminiRequestsPerMinute})
		provider, err := NewGeminiProvider(ctx, cfg.GeminiKey, cfg.Timeout, limiter, endpoints.Gemini)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.ClaudeKey != "" {
		limiter := limiters.Create("ai:"+ProviderNameClaude.String(), ratelimit.Budget{PerMinute: cfg.ClaudeRequestsPerMinute})
		var opts []anthropicoption.RequestOption
		if endpoints.Claude != "" {
			opts = append(opts, anthropicoption.WithBaseURL(endpoints.Claude))
		}
		provider := NewClaudeProvider(cfg.ClaudeKey, cfg.Timeout, limiter, opts...)
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	names := registry.Names()
	if len(names) == 0 {
		return registry, errors.Wrap(errors.ErrNotConfigured, "no AI provider API key configured")
	}

	preferred := NormalizeProviderName(cfg.DefaultProvider)
	if _, err := registry.Get(preferred); err != nil {
		logger.FromContext(ctx).Warnw("Default AI provider has no API key, falling back",
			"requested", preferred,
			"using", names[0],
		)
		preferred = names[0]
	}
	if err := registry.SetDefault(preferred); err != nil {
		return nil, err
	}

	return registry, nil
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
