package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"workflowsvc/pkg/logger"
)

// CustomCollector reports dependency state at scrape time
type CustomCollector struct {
	log       *logger.Logger
	redis     redis.UniversalClient
	providers func() []string

	// Descriptors
	redisUp            *prometheus.Desc
	providerConfigured *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector.
// redis may be nil when rate limits are kept in memory.
func NewCustomCollector(log *logger.Logger, redis redis.UniversalClient, providers func() []string) *CustomCollector {
	return &CustomCollector{
		log:       log,
		redis:     redis,
		providers: providers,

		redisUp: prometheus.NewDesc(
			"workflowsvc_redis_up",
			"Whether the rate limit store answered a ping (1=up, 0=down)",
			nil, nil,
		),
		providerConfigured: prometheus.NewDesc(
			"workflowsvc_ai_provider_configured",
			"AI providers with credentials configured",
			[]string{"provider"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.redisUp
	ch <- c.providerConfigured
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.collectRedis(ctx, ch)
	c.collectProviders(ch)
}

func (c *CustomCollector) collectRedis(ctx context.Context, ch chan<- prometheus.Metric) {
	if c.redis == nil {
		return
	}

	up := 1.0
	if err := c.redis.Ping(ctx).Err(); err != nil {
		c.log.Warnw("Redis ping failed during metrics scrape", "error", err)
		up = 0
	}

	ch <- prometheus.MustNewConstMetric(c.redisUp, prometheus.GaugeValue, up)
}

func (c *CustomCollector) collectProviders(ch chan<- prometheus.Metric) {
	if c.providers == nil {
		return
	}
	for _, name := range c.providers() {
		ch <- prometheus.MustNewConstMetric(c.providerConfigured, prometheus.GaugeValue, 1, name)
	}
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) error {
	return prometheus.Register(collector)
}
