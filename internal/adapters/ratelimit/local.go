package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleTTL = 10 * time.Minute

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key in process memory.
// Suitable for a single replica.
type LocalLimiter struct {
	budget  Budget
	mu      sync.Mutex
	entries map[string]*localEntry
	swept   time.Time
	now     func() time.Time
}

// NewLocalLimiter creates an in-memory keyed limiter
func NewLocalLimiter(budget Budget) *LocalLimiter {
	return &LocalLimiter{
		budget:  budget,
		entries: make(map[string]*localEntry),
		now:     time.Now,
	}
}

// Allow consumes a token for key if one is available
func (l *LocalLimiter) Allow(_ context.Context, key string) (Result, error) {
	if !l.budget.Enabled() {
		return Result{Allowed: true, Remaining: -1}, nil
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(rate.Limit(l.budget.perSecond()), l.budget.burst())}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	res := entry.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}, nil
	}

	return Result{Allowed: true, Remaining: int(entry.limiter.TokensAt(now))}, nil
}

// Budget returns the configured budget
func (l *LocalLimiter) Budget() Budget { return l.budget }

// sweep drops buckets idle long enough to have refilled completely
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.swept) < time.Minute {
		return
	}
	l.swept = now
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > idleTTL {
			delete(l.entries, key)
		}
	}
}

// Len returns the number of tracked keys
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
