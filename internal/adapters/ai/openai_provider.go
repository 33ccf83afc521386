package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"workflowsvc/internal/adapters/ratelimit"
	"workflowsvc/internal/agents/schemas"
	"workflowsvc/pkg/errors"
)

// OpenAIProvider produces structured outputs through the chat completions
// API with a strict JSON schema response format.
type OpenAIProvider struct {
	client  openai.Client
	limiter ratelimit.Limiter
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(apiKey string, timeout time.Duration, limiter ratelimit.Limiter, opts ...option.RequestOption) *OpenAIProvider {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(append(base, opts...)...),
		limiter: limiter,
	}
}

// Name returns provider name.
func (p *OpenAIProvider) Name() string { return ProviderNameOpenAI.String() }

// GenerateStructured sends one system+user exchange and returns the JSON payload.
func (p *OpenAIProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	if err := wait(ctx, ProviderNameOpenAI, p.limiter); err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens(req))),
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName(req),
					Strict: openai.Bool(true),
					Schema: schemas.ToJSONSchema(req.Schema),
				},
			},
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, newAPIError(ProviderNameOpenAI, apiErr.StatusCode, err)
		}
		return nil, newAPIError(ProviderNameOpenAI, 0, err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrExternal, "openai returned no choices")
	}

	choice := completion.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, errors.Wrapf(errors.ErrExternal, "openai refused: %s", choice.Message.Refusal)
	}

	return &StructuredResponse{
		Provider:     p.Name(),
		Model:        completion.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func schemaName(req StructuredRequest) string {
	if req.SchemaName != "" {
		return req.SchemaName
	}
	return "structured_output"
}
