package bootstrap

import (
	"context"
	"slices"
	"sync"
	"time"

	redisclient "workflowsvc/internal/adapters/redis"
	"workflowsvc/internal/agents"
	"workflowsvc/internal/api"
	"workflowsvc/internal/trace"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{shutdownTimeout: defaultShutdownTimeout}
}

// SetShutdownTimeout overrides the overall shutdown budget
func (l *Lifecycle) SetShutdownTimeout(timeout time.Duration) {
	if timeout > 0 {
		l.shutdownTimeout = timeout
	}
}

// Shutdown performs coordinated cleanup in order:
// 1. Stop accepting requests and drain in-flight workflows
// 2. Wait for server goroutines
// 3. Log the per-model token usage of the process
// 4. Flush traces and tracked errors
// 5. Sync logs
// 6. Close Redis last, in-flight requests may still use the limiter
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	usage *agents.UsageTracker,
	redisClient *redisclient.Client,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	log.Info("[1/7] Stopping HTTP server...")
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
	}

	log.Info("[2/7] Waiting for goroutines...")
	l.waitForGoroutines(wg, 5*time.Second, log)

	log.Info("[3/7] Reporting token usage...")
	l.logUsage(usage, log)

	log.Info("[4/7] Flushing traces...")
	if err := trace.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Trace shutdown failed", "error", err)
	}

	log.Info("[5/7] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, errorTracker, log)

	log.Info("[6/7] Syncing logs...")
	if err := logger.Sync(); err != nil {
		log.Warn("Log sync completed with warnings")
	}

	log.Info("[7/7] Closing Redis...")
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Errorw("Redis close failed", "error", err)
		}
	}

	log.Info("✅ Graceful shutdown complete")
}

// logUsage writes one line per model, sorted by model ID, then the total
func (l *Lifecycle) logUsage(usage *agents.UsageTracker, log *logger.Logger) {
	all := usage.All()
	if len(all) == 0 {
		log.Info("No model calls recorded")
		return
	}

	models := make([]string, 0, len(all))
	for id := range all {
		models = append(models, id)
	}
	slices.Sort(models)

	for _, id := range models {
		mu := all[id]
		log.Infow("Model usage",
			"model", id,
			"calls", mu.CallCount,
			"input_tokens", mu.InputTokens,
			"output_tokens", mu.OutputTokens,
		)
	}
	log.Infow("Total token usage", "models", len(models), "tokens", usage.TotalTokens())
}

// waitForGoroutines waits for all goroutines with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("⚠ Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

// flushErrorTracker flushes the error tracker (Sentry, etc.)
func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 3*time.Second)
	defer flushCancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Error tracker flush failed", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}
