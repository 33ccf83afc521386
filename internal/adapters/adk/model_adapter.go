package adk

import (
	"context"
	"iter"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"workflowsvc/internal/adapters/ai"
	"workflowsvc/pkg/errors"
)

// ModelAdapter adapts an ai.Provider to ADK's model.LLM interface. Every call
// is a structured generation constrained to the adapter's schema.
type ModelAdapter struct {
	provider     ai.Provider
	modelName    string
	systemPrompt string
	schemaName   string
	schema       *genai.Schema
	maxTokens    int
}

// ModelConfig is the per-agent request shape the adapter sends to the provider
type ModelConfig struct {
	Model        string
	SystemPrompt string
	SchemaName   string
	Schema       *genai.Schema
	MaxTokens    int
}

// NewModelAdapter creates a new ADK model adapter.
func NewModelAdapter(provider ai.Provider, cfg ModelConfig) *ModelAdapter {
	return &ModelAdapter{
		provider:     provider,
		modelName:    cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		schemaName:   cfg.SchemaName,
		schema:       cfg.Schema,
		maxTokens:    cfg.MaxTokens,
	}
}

// Name returns the model name.
func (m *ModelAdapter) Name() string {
	return m.modelName
}

// GenerateContent implements the ADK model.LLM interface. The provider's reply
// and error are also stored on the Call carried by ctx, if any.
func (m *ModelAdapter) GenerateContent(
	ctx context.Context,
	req *model.LLMRequest,
	stream bool,
) iter.Seq2[*model.LLMResponse, error] {
	call := callFromContext(ctx)

	if stream {
		return func(yield func(*model.LLMResponse, error) bool) {
			err := errors.Wrap(errors.ErrNotImplemented, "streaming not implemented")
			call.fail(err)
			yield(nil, err)
		}
	}

	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.provider.GenerateStructured(ctx, m.convertToStructuredRequest(req))
		if err != nil {
			call.fail(err)
			yield(nil, err)
			return
		}
		if resp == nil {
			yield(nil, errors.Wrap(errors.ErrInternal, "nil provider response"))
			return
		}

		call.succeed(resp)
		yield(convertToADKResponse(resp), nil)
	}
}

// convertToStructuredRequest keeps the system instruction ADK assembled and
// the latest user turn. Each run starts a fresh session, so there is one.
func (m *ModelAdapter) convertToStructuredRequest(req *model.LLMRequest) ai.StructuredRequest {
	out := ai.StructuredRequest{
		Model:        m.modelName,
		SystemPrompt: m.systemPrompt,
		SchemaName:   m.schemaName,
		Schema:       m.schema,
		MaxTokens:    m.maxTokens,
	}
	if req == nil {
		return out
	}

	if req.Config != nil {
		if system := contentText(req.Config.SystemInstruction); system != "" {
			out.SystemPrompt = system
		}
	}

	for i := len(req.Contents) - 1; i >= 0; i-- {
		content := req.Contents[i]
		if content == nil || content.Role != genai.RoleUser {
			continue
		}
		if text := contentText(content); text != "" {
			out.Prompt = text
			break
		}
	}
	return out
}

func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	texts := make([]string, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

func convertToADKResponse(resp *ai.StructuredResponse) *model.LLMResponse {
	content := &genai.Content{
		Role:  genai.RoleModel,
		Parts: []*genai.Part{},
	}
	if resp.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: resp.Content})
	}

	usage := &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     int32(resp.Usage.PromptTokens),
		CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
		TotalTokenCount:      int32(resp.Usage.TotalTokens),
	}

	finish := genai.FinishReasonStop
	switch resp.FinishReason {
	case "length", "max_tokens", string(genai.FinishReasonMaxTokens):
		finish = genai.FinishReasonMaxTokens
	}

	return &model.LLMResponse{
		Content:       content,
		FinishReason:  finish,
		UsageMetadata: usage,
		TurnComplete:  true,
	}
}

// Ensure ModelAdapter implements model.LLM
var _ model.LLM = (*ModelAdapter)(nil)
