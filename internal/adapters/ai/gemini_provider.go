package ai

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/genai"

	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/pkg/errors"
)

// GeminiProvider produces structured outputs with a native response schema.
type GeminiProvider struct {
	client  *genai.Client
	limiter ratelimit.Limiter
}

// NewGeminiProvider creates a new Gemini provider. baseURL may be empty.
func NewGeminiProvider(ctx context.Context, apiKey string, timeout time.Duration, limiter ratelimit.Limiter, baseURL string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &GeminiProvider{client: client, limiter: limiter}, nil
}

// Name returns provider name.
func (p *GeminiProvider) Name() string { return ProviderNameGemini.String() }

// GenerateStructured sends one system+user exchange and returns the JSON payload.
func (p *GeminiProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if err := wait(ctx, ProviderNameGemini, p.limiter); err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(maxTokens(req)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, newAPIError(ProviderNameGemini, apiErr.Code, err)
		}
		return nil, newAPIError(ProviderNameGemini, 0, err)
	}

	out := &StructuredResponse{
		Provider: p.Name(),
		Model:    req.Model,
		Content:  resp.Text(),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}
