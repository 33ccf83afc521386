package agents

import (
	"sync"

	"workflowsvc/internal/adapters/ai"
)

// UsageTracker accumulates token usage per model for the lifetime of the process
type UsageTracker struct {
	mu    sync.RWMutex
	usage map[string]*ModelUsage // model ID -> usage data
}

// ModelUsage tracks usage for a specific model
type ModelUsage struct {
	ModelID      string
	InputTokens  int64
	OutputTokens int64
	CallCount    int64
}

// NewUsageTracker creates a new usage tracker
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		usage: make(map[string]*ModelUsage),
	}
}

// Record records token usage for a model
func (t *UsageTracker) Record(model string, usage ai.Usage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	mu, ok := t.usage[model]
	if !ok {
		mu = &ModelUsage{ModelID: model}
		t.usage[model] = mu
	}
	mu.InputTokens += int64(usage.PromptTokens)
	mu.OutputTokens += int64(usage.CompletionTokens)
	mu.CallCount++
}

// All returns a snapshot of all usage data
func (t *UsageTracker) All() map[string]ModelUsage {
	if t == nil {
		return map[string]ModelUsage{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]ModelUsage, len(t.usage))
	for id, mu := range t.usage {
		out[id] = *mu
	}
	return out
}

// TotalTokens returns input plus output tokens across all models
func (t *UsageTracker) TotalTokens() int64 {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total int64
	for _, mu := range t.usage {
		total += mu.InputTokens + mu.OutputTokens
	}
	return total
}
