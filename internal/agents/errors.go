package agents

import (
	"fmt"

	"workflowsvc/pkg/errors"
)

var (
	// ErrEmptyOutput means the model produced no parseable structured payload
	ErrEmptyOutput = errors.New("agent returned no parseable structured payload")

	// ErrSchemaViolation is an ErrEmptyOutput whose payload parsed but broke the schema
	ErrSchemaViolation = errors.Wrap(ErrEmptyOutput, "schema violation")
)

// ProviderError is a failed call to the model provider.
type ProviderError struct {
	Agent    string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider %s call failed: %v", e.Agent, e.Provider, e.Err)
}

// Unwrap exposes both the taxonomy kind and the cause
func (e *ProviderError) Unwrap() []error {
	return []error{errors.ErrProvider, e.Err}
}

// UnexpectedError covers panics and anything the other kinds do not describe.
type UnexpectedError struct {
	Agent string
	Err   error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: unexpected failure: %v", e.Agent, e.Err)
}

// Unwrap exposes both the taxonomy kind and the cause
func (e *UnexpectedError) Unwrap() []error {
	return []error{errors.ErrInternal, e.Err}
}
