package ai

import (
	"context"
	"fmt"
	"net/http"

	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/pkg/errors"
)

// RateLimitError wraps rate limit related errors with provider context.
type RateLimitError struct {
	Provider ProviderName
	Limit    ratelimit.Budget
	Err      error
}

// Error implements error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit error for provider %s (limit: %s): %v", e.Provider, e.Limit, e.Err)
}

// Unwrap returns the underlying error.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// APIError is a failed call to a provider API
type APIError struct {
	Provider   ProviderName
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (%d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

// Unwrap exposes both the taxonomy kind and the SDK error
func (e *APIError) Unwrap() []error {
	return []error{e.kind(), e.Err}
}

func (e *APIError) kind() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return errors.ErrRateLimitExceeded
	case errors.Is(e.Err, context.DeadlineExceeded):
		return errors.ErrTimeout
	default:
		return errors.ErrExternal
	}
}

func newAPIError(provider ProviderName, status int, err error) error {
	return &APIError{Provider: provider, StatusCode: status, Err: err}
}

// wait blocks on the provider's outbound budget
func wait(ctx context.Context, provider ProviderName, limiter ratelimit.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := ratelimit.Wait(ctx, limiter, provider.String()); err != nil {
		return &RateLimitError{Provider: provider, Limit: limiter.Budget(), Err: err}
	}
	return nil
}

func maxTokens(req StructuredRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
