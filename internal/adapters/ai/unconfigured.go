package ai

import (
	"context"

	"workflowsvc/pkg/errors"
)

// UnconfiguredProvider stands in when no API key is set. The service keeps
// serving /health (503) and every generation attempt fails fast.
type UnconfiguredProvider struct{}

func (UnconfiguredProvider) Name() string { return "unconfigured" }

func (UnconfiguredProvider) GenerateStructured(context.Context, StructuredRequest) (*StructuredResponse, error) {
	return nil, errors.Wrap(errors.ErrNotConfigured, "no AI provider credential configured")
}
