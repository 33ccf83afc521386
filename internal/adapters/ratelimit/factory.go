package ratelimit

import (
	"github.com/redis/go-redis/v9"
)

// Factory creates limiters backed by Redis when a client is available and
// by process memory otherwise.
type Factory struct {
	redis redis.Scripter
}

// NewFactory creates a factory. client may be nil.
func NewFactory(client redis.Scripter) *Factory {
	return &Factory{redis: client}
}

// Distributed reports whether limiters are shared across replicas
func (f *Factory) Distributed() bool { return f.redis != nil }

// Create returns a limiter for scope with the given budget
func (f *Factory) Create(scope string, budget Budget) Limiter {
	if !budget.Enabled() {
		return NoOpLimiter{}
	}
	if f.redis != nil {
		return NewRedisLimiter(f.redis, scope, budget)
	}
	return NewLocalLimiter(budget)
}
