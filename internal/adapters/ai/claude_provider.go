package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/internal/agents/schemas"
	"workflowsvc/pkg/errors"
)

// ClaudeProvider has no native response schema, so the schema is appended
// to the system prompt and the JSON object is cut out of the reply text.
type ClaudeProvider struct {
	client  anthropic.Client
	limiter ratelimit.Limiter
}

// NewClaudeProvider creates a new Claude provider.
func NewClaudeProvider(apiKey string, timeout time.Duration, limiter ratelimit.Limiter, opts ...option.RequestOption) *ClaudeProvider {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}

	return &ClaudeProvider{
		client:  anthropic.NewClient(append(base, opts...)...),
		limiter: limiter,
	}
}

// Name returns provider name.
func (p *ClaudeProvider) Name() string {
	return ProviderNameClaude.String()
}

// GenerateStructured sends one system+user exchange and returns the JSON payload.
func (p *ClaudeProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if err := wait(ctx, ProviderNameClaude, p.limiter); err != nil {
		return nil, err
	}

	system, err := claudeSystemPrompt(req)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens(req)),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, newAPIError(ProviderNameClaude, apiErr.StatusCode, err)
		}
		return nil, newAPIError(ProviderNameClaude, 0, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &StructuredResponse{
		Provider:     p.Name(),
		Model:        string(msg.Model),
		Content:      cleanJSON(text.String()),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

func claudeSystemPrompt(req StructuredRequest) (string, error) {
	if req.Schema == nil {
		return req.SystemPrompt, nil
	}

	doc, err := json.MarshalIndent(schemas.ToJSONSchema(req.Schema), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal response schema")
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.SystemPrompt))
	b.WriteString("\n\nRespond with a single JSON object and nothing else. It must validate against this JSON Schema:\n")
	b.Write(doc)
	return b.String(), nil
}
