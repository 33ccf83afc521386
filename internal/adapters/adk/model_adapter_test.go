package adk

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"workflowsvc/internal/adapters/ai"
	"workflowsvc/pkg/errors"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []ai.StructuredRequest
	resp     *ai.StructuredResponse
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateStructured(_ context.Context, req ai.StructuredRequest) (*ai.StructuredResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func newAdapter(p ai.Provider) *ModelAdapter {
	return NewModelAdapter(p, ModelConfig{
		Model:        "gpt-4o",
		SystemPrompt: "fallback system",
		SchemaName:   "market_analysis",
		Schema:       &genai.Schema{Type: genai.TypeObject},
		MaxTokens:    1024,
	})
}

func TestConvertToStructuredRequest(t *testing.T) {
	m := newAdapter(&fakeProvider{})

	req := m.convertToStructuredRequest(&model.LLMRequest{
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("You are an analyst.", genai.RoleUser),
		},
		Contents: []*genai.Content{
			genai.NewContentFromText("first", genai.RoleUser),
			genai.NewContentFromText("{}", genai.RoleModel),
			genai.NewContentFromText("latest transcript", genai.RoleUser),
		},
	})

	assert.Equal(t, "You are an analyst.", req.SystemPrompt)
	assert.Equal(t, "latest transcript", req.Prompt)
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, "market_analysis", req.SchemaName)
	assert.Equal(t, 1024, req.MaxTokens)

	bare := m.convertToStructuredRequest(&model.LLMRequest{})
	assert.Equal(t, "fallback system", bare.SystemPrompt)
	assert.Empty(t, bare.Prompt)
}

func TestGenerateContentRecordsReply(t *testing.T) {
	p := &fakeProvider{resp: &ai.StructuredResponse{
		Model:        "gpt-4o-2024",
		Content:      `{"summary":"ok"}`,
		FinishReason: "length",
		Usage:        ai.Usage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16},
	}}
	ctx, call := WithCall(context.Background())

	var got []*model.LLMResponse
	for resp, err := range newAdapter(p).GenerateContent(ctx, &model.LLMRequest{}, false) {
		require.NoError(t, err)
		got = append(got, resp)
	}

	require.Len(t, got, 1)
	assert.Equal(t, `{"summary":"ok"}`, got[0].Content.Parts[0].Text)
	assert.Equal(t, genai.FinishReasonMaxTokens, got[0].FinishReason)
	assert.Equal(t, int32(12), got[0].UsageMetadata.PromptTokenCount)

	outcome := call.Outcome()
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, "gpt-4o-2024", outcome.Response.Model)
}

func TestGenerateContentRecordsProviderError(t *testing.T) {
	cause := errors.Wrap(errors.ErrExternal, "upstream 503")
	ctx, call := WithCall(context.Background())

	for _, err := range newAdapter(&fakeProvider{err: cause}).GenerateContent(ctx, &model.LLMRequest{}, false) {
		assert.ErrorIs(t, err, errors.ErrExternal)
	}

	outcome := call.Outcome()
	assert.ErrorIs(t, outcome.Err, errors.ErrExternal)
	assert.Nil(t, outcome.Response)
}

func TestGenerateContentRejectsStreaming(t *testing.T) {
	p := &fakeProvider{}
	for _, err := range newAdapter(p).GenerateContent(context.Background(), &model.LLMRequest{}, true) {
		assert.ErrorIs(t, err, errors.ErrNotImplemented)
	}
	assert.Empty(t, p.requests)
}

func TestRunnerRunsAgentInFreshSession(t *testing.T) {
	p := &fakeProvider{resp: &ai.StructuredResponse{
		Content: `{"summary":"ok"}`,
		Usage:   ai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}}
	r, err := NewRunner("workflow_test", AgentConfig{
		Name:        "MarketAnalysisAgent",
		Description: "test agent",
		Instruction: "Return JSON.",
		Model:       newAdapter(p),
	})
	require.NoError(t, err)

	for _, prompt := range []string{"first video", "second video"} {
		ctx, call := WithCall(context.Background())
		text, err := r.Run(ctx, prompt)
		require.NoError(t, err)
		assert.Equal(t, `{"summary":"ok"}`, text)
		assert.Equal(t, 1, call.Outcome().Attempts)
	}

	require.Len(t, p.requests, 2)
	assert.Equal(t, "first video", p.requests[0].Prompt)
	assert.Equal(t, "second video", p.requests[1].Prompt)
	assert.Contains(t, p.requests[1].SystemPrompt, "Return JSON.")
}
