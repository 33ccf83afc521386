package adk

import (
	"context"
	"sync"

	"workflowsvc/internal/adapters/ai"
)

type callKey struct{}

// Call holds the provider outcome of one agent run. ADK reports model
// failures as plain errors; Call keeps the original reply and error so the
// caller can classify them.
type Call struct {
	mu       sync.Mutex
	response *ai.StructuredResponse
	err      error
	attempts int
}

// WithCall returns ctx carrying a fresh Call
func WithCall(ctx context.Context) (context.Context, *Call) {
	call := &Call{}
	return context.WithValue(ctx, callKey{}, call), call
}

func callFromContext(ctx context.Context) *Call {
	call, _ := ctx.Value(callKey{}).(*Call)
	return call
}

// Outcome is a snapshot of a Call
type Outcome struct {
	Response *ai.StructuredResponse
	Err      error
	Attempts int
}

// Outcome returns the last provider reply or error and the number of model calls
func (c *Call) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Outcome{Response: c.response, Err: c.err, Attempts: c.attempts}
}

func (c *Call) succeed(resp *ai.StructuredResponse) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = resp
	c.err = nil
	c.attempts++
}

func (c *Call) fail(err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	c.attempts++
}
