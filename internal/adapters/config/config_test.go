package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowsvc/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "workflow-service", cfg.App.Name)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, ":8000", cfg.HTTP.Addr())
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.True(t, cfg.HTTP.AllowsAllOrigins())
	assert.Equal(t, 5, cfg.RateLimit.ProcessPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.HealthPerMinute)
	assert.Equal(t, "openai", cfg.AI.DefaultProvider)
	assert.Equal(t, "gpt-4o", cfg.AI.AnalysisModel)
	assert.Equal(t, "gpt-4o", cfg.AI.RecommendationModel)
	assert.Equal(t, "gpt-5.2", cfg.AI.AggregateModel)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, []string{"en"}, cfg.Transcript.Languages)
	assert.True(t, cfg.AI.HasCredentials())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("DEFAULT_AI_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.HTTP.AllowsAllOrigins())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.Equal(t, "gemini", cfg.AI.DefaultProvider)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("DEFAULT_AI_PROVIDER", "deepseek")

	_, err := Load()
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestValidateRequiresSentryDSN(t *testing.T) {
	t.Setenv("ERROR_TRACKING_ENABLED", "true")

	_, err := Load()
	assert.ErrorContains(t, err, "SENTRY_DSN")
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.HTTP.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "load-balancer")
	_, err = Load()
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
