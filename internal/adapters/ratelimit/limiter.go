package ratelimit

import (
	"context"
	"fmt"
	"time"

	"workflowsvc/pkg/errors"
)

// Budget is a per-key allowance of PerMinute requests with bursts of up to Burst
type Budget struct {
	PerMinute int
	Burst     int
}

// Enabled reports whether the budget limits anything
func (b Budget) Enabled() bool { return b.PerMinute > 0 }

// burst defaults to the full per-minute budget so a fresh key can spend it at once
func (b Budget) burst() int {
	if b.Burst > 0 {
		return b.Burst
	}
	if b.PerMinute > 0 {
		return b.PerMinute
	}
	return 1
}

// perSecond returns the refill rate in tokens per second
func (b Budget) perSecond() float64 {
	return float64(b.PerMinute) / 60.0
}

func (b Budget) String() string {
	return fmt.Sprintf("%d/minute", b.PerMinute)
}

// Result is the outcome of one admission attempt
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter grants or denies requests per key (client address, provider name)
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Budget() Budget
}

// Wait blocks until limiter admits key or ctx is done
func Wait(ctx context.Context, limiter Limiter, key string) error {
	for {
		res, err := limiter.Allow(ctx, key)
		if err != nil {
			return err
		}
		if res.Allowed {
			return nil
		}

		wait := res.RetryAfter
		if wait <= 0 {
			wait = 100 * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "rate limiter wait cancelled for %s", key)
		case <-time.After(wait):
		}
	}
}

// NoOpLimiter admits everything
type NoOpLimiter struct{}

// Allow always admits
func (NoOpLimiter) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: -1}, nil
}

// Budget returns the zero budget
func (NoOpLimiter) Budget() Budget { return Budget{} }
