package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"workflowsvc/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	AI            AIConfig
	Transcript    TranscriptConfig
	Templates     TemplateConfig
	ErrorTracking ErrorTrackingConfig
	Tracing       TracingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"workflow-service"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"PORT" default:"8000"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxBodyBytes    int64         `envconfig:"HTTP_MAX_BODY_BYTES" default:"1048576"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s"`
	// Empty means forwarding headers are ignored and the socket peer is the client
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// Addr returns the listen address
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowsAllOrigins reports whether CORS is open to any origin
func (c HTTPConfig) AllowsAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return len(c.AllowedOrigins) == 0
}

// RateLimitConfig holds the per-client admission budgets
type RateLimitConfig struct {
	Enabled          bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	ProcessPerMinute int  `envconfig:"RATE_LIMIT_PROCESS_PER_MIN" default:"5"`
	HealthPerMinute  int  `envconfig:"RATE_LIMIT_HEALTH_PER_MIN" default:"10"`
}

// RedisConfig is optional; with no host the service keeps rate limit state in memory
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type AIConfig struct {
	ClaudeKey       string        `envconfig:"CLAUDE_API_KEY"`
	OpenAIKey       string        `envconfig:"OPENAI_API_KEY"`
	GeminiKey       string        `envconfig:"GEMINI_API_KEY"`
	DefaultProvider string        `envconfig:"DEFAULT_AI_PROVIDER" default:"openai"`
	Timeout         time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	MaxOutputTokens int           `envconfig:"AI_MAX_OUTPUT_TOKENS" default:"4096"`

	AnalysisModel       string `envconfig:"AI_MODEL_ANALYSIS" default:"gpt-4o"`
	RecommendationModel string `envconfig:"AI_MODEL_RECOMMENDATION" default:"gpt-4o"`
	AggregateModel      string `envconfig:"AI_MODEL_AGGREGATE" default:"gpt-5.2"`

	// Outbound request budgets per provider, 0 disables
	OpenAIRequestsPerMinute int `envconfig:"OPENAI_REQUESTS_PER_MIN" default:"500"`
	GeminiRequestsPerMinute int `envconfig:"GEMINI_REQUESTS_PER_MIN" default:"60"`
	ClaudeRequestsPerMinute int `envconfig:"CLAUDE_REQUESTS_PER_MIN" default:"50"`
}

// HasCredentials reports whether at least one provider key is set
func (c AIConfig) HasCredentials() bool {
	return c.OpenAIKey != "" || c.GeminiKey != "" || c.ClaudeKey != ""
}

type TranscriptConfig struct {
	BaseURL   string        `envconfig:"TRANSCRIPT_BASE_URL" default:"https://www.youtube.com"`
	Languages []string      `envconfig:"TRANSCRIPT_LANGUAGES" default:"en"`
	Timeout   time.Duration `envconfig:"TRANSCRIPT_TIMEOUT" default:"30s"`
}

// TemplateConfig points at an optional directory overriding the embedded prompts
type TemplateConfig struct {
	OverrideDir string `envconfig:"PROMPT_TEMPLATES_DIR"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type TracingConfig struct {
	Enabled     bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1.0"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.NewValidationError("PORT", "must be between 1 and 65535", c.HTTP.Port)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.NewValidationError("HTTP_MAX_BODY_BYTES", "must be positive", c.HTTP.MaxBodyBytes)
	}
	for _, proxy := range c.HTTP.TrustedProxies {
		if !validProxy(proxy) {
			return errors.NewValidationError("TRUSTED_PROXIES", "must be IP addresses or CIDR ranges", proxy)
		}
	}
	if c.RateLimit.ProcessPerMinute < 0 || c.RateLimit.HealthPerMinute < 0 {
		return errors.NewValidationError("RATE_LIMIT_*_PER_MIN", "must not be negative", nil)
	}
	switch strings.ToLower(strings.TrimSpace(c.AI.DefaultProvider)) {
	case "openai", "gemini", "claude":
	default:
		return errors.NewValidationError("DEFAULT_AI_PROVIDER", "must be one of openai, gemini, claude", c.AI.DefaultProvider)
	}
	if c.ErrorTracking.Enabled && c.ErrorTracking.SentryDSN == "" {
		return errors.NewValidationError("SENTRY_DSN", "required when ERROR_TRACKING_ENABLED is true", nil)
	}
	return nil
}

func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}
	return net.ParseIP(proxy) != nil
}
