package ai

import (
	"context"

	"google.golang.org/genai"
)

// Provider defines the contract each AI provider implementation must satisfy.
type Provider interface {
	Name() string

	// GenerateStructured asks the model for a single JSON document matching
	// req.Schema and returns the raw payload. Validation of the payload is
	// left to the caller.
	GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)
}

// StructuredRequest is one system+user exchange constrained to a schema.
type StructuredRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	SchemaName   string
	Schema       *genai.Schema
	MaxTokens    int
}

// Usage reports token accounting for a completion
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StructuredResponse carries the raw JSON payload returned by the model.
type StructuredResponse struct {
	Provider     string
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
}
