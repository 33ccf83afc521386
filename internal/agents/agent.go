package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"workflowsvc/internal/adapters/adk"
	"workflowsvc/internal/adapters/ai"
	"workflowsvc/internal/agents/schemas"
	"workflowsvc/internal/metrics"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
	"workflowsvc/pkg/templates"
)

// Agent turns one prompt into one validated structured result of type T.
// It runs as an ADK llmagent and never retries: every failure is classified
// and returned.
type Agent[T Output] struct {
	cfg      AgentConfig
	provider ai.Provider
	runner   *adk.Runner
	usage    *UsageTracker
}

// appName scopes the ADK sessions of every stage agent
const appName = "workflow"

// NewAgent renders the system prompt once and binds the agent to provider.
func NewAgent[T Output](cfg AgentConfig, provider ai.Provider, tmpl *templates.Registry, usage *UsageTracker) (*Agent[T], error) {
	if provider == nil {
		return nil, fmt.Errorf("%s: provider is required", cfg.Name)
	}
	if cfg.Schema == nil {
		return nil, fmt.Errorf("%s: output schema is required", cfg.Name)
	}
	if tmpl == nil {
		tmpl = templates.Get()
	}

	system, err := tmpl.Render(cfg.SystemPromptTemplate, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: render system prompt", cfg.Name)
	}

	system = strings.TrimSpace(system)
	llm := adk.NewModelAdapter(provider, adk.ModelConfig{
		Model:        cfg.Model,
		SystemPrompt: system,
		SchemaName:   cfg.SchemaName,
		Schema:       cfg.Schema,
		MaxTokens:    cfg.MaxTokens,
	})
	runner, err := adk.NewRunner(appName, adk.AgentConfig{
		Name:        cfg.Name,
		Description: cfg.Description,
		Instruction: system,
		Model:       llm,
	})
	if err != nil {
		return nil, err
	}

	return &Agent[T]{
		cfg:      cfg,
		provider: provider,
		runner:   runner,
		usage:    usage,
	}, nil
}

// Name returns the agent name
func (a *Agent[T]) Name() string { return a.cfg.Name }

// Run submits prompt with the agent's system prompt and schema and decodes the reply.
func (a *Agent[T]) Run(ctx context.Context, prompt string) (result T, err error) {
	log := logger.FromContext(ctx).With("agent", a.cfg.Name, "provider", a.provider.Name())
	start := time.Now()
	model := a.cfg.Model
	var usage ai.Usage

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &UnexpectedError{Agent: a.cfg.Name, Err: fmt.Errorf("panic: %v", r)}
			log.Errorw("Agent panicked", "panic", r)
		}
		metrics.RecordAgentCall(string(a.cfg.Type), model, time.Since(start), usage.PromptTokens, usage.CompletionTokens, err)
	}()

	log.Debugw("Running agent", "model", model, "prompt_chars", len(prompt))

	runCtx, call := adk.WithCall(ctx)
	text, runErr := a.runner.Run(runCtx, prompt)
	outcome := call.Outcome()

	switch {
	case outcome.Err != nil:
		log.Errorw("Agent provider call failed", "model", model, "error", outcome.Err)
		return result, &ProviderError{Agent: a.cfg.Name, Provider: a.provider.Name(), Err: outcome.Err}
	case runErr != nil && ctx.Err() != nil:
		log.Errorw("Agent run interrupted", "model", model, "error", runErr)
		return result, &ProviderError{Agent: a.cfg.Name, Provider: a.provider.Name(), Err: ctx.Err()}
	case runErr != nil:
		log.Errorw("Agent run failed", "model", model, "error", runErr)
		return result, &UnexpectedError{Agent: a.cfg.Name, Err: runErr}
	case outcome.Response == nil:
		log.Errorw("Agent finished without a model reply", "model", model)
		return result, &UnexpectedError{Agent: a.cfg.Name, Err: errors.New("nil provider response")}
	}

	resp := outcome.Response
	if resp.Model != "" {
		model = resp.Model
	}
	usage = resp.Usage
	a.usage.Record(model, usage)

	raw := text
	if raw == "" {
		raw = strings.TrimSpace(resp.Content)
	}
	if raw == "" {
		log.Errorw("Agent returned empty output", "model", model, "finish_reason", resp.FinishReason)
		return result, errors.Wrapf(ErrEmptyOutput, "%s returned empty content", a.cfg.Name)
	}

	if !json.Valid([]byte(raw)) {
		log.Errorw("Agent output is not JSON", "model", model, "finish_reason", resp.FinishReason)
		return result, errors.Wrapf(ErrEmptyOutput, "%s returned unparsable content", a.cfg.Name)
	}

	if verr := schemas.Validate(a.cfg.Schema, []byte(raw)); verr != nil {
		log.Errorw("Agent output failed schema validation", "model", model, "error", verr)
		return result, fmt.Errorf("%s: %w: %w", a.cfg.Name, ErrSchemaViolation, verr)
	}

	var out T
	if derr := json.Unmarshal([]byte(raw), &out); derr != nil {
		log.Errorw("Agent output could not be decoded", "model", model, "error", derr)
		return result, fmt.Errorf("%s: %w: %v", a.cfg.Name, ErrEmptyOutput, derr)
	}

	if verr := out.Validate(); verr != nil {
		log.Errorw("Agent output failed validation", "model", model, "error", verr)
		return result, fmt.Errorf("%s: %w: %v", a.cfg.Name, ErrSchemaViolation, verr)
	}

	log.Infow("Agent completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", usage.PromptTokens,
		"output_tokens", usage.CompletionTokens,
	)

	return out, nil
}
