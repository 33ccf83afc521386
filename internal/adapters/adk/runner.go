package adk

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"workflowsvc/pkg/errors"
)

const runnerUserID = "workflow"

// AgentConfig describes a single-turn LLM agent
type AgentConfig struct {
	Name        string
	Description string
	Instruction string
	Model       model.LLM
}

// Runner executes one ADK agent per prompt, each run in a throwaway in-memory session
type Runner struct {
	appName  string
	agent    agent.Agent
	runner   *runner.Runner
	sessions session.Service
}

// NewRunner builds the llmagent and its ADK runner
func NewRunner(appName string, cfg AgentConfig) (*Runner, error) {
	ag, err := llmagent.New(llmagent.Config{
		Name:        cfg.Name,
		Description: cfg.Description,
		Model:       cfg.Model,
		Instruction: cfg.Instruction,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create ADK agent %s", cfg.Name)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          ag,
		SessionService: sessions,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ADK runner")
	}

	return &Runner{appName: appName, agent: ag, runner: r, sessions: sessions}, nil
}

// Run sends prompt as the user turn and returns the text of the agent's last response
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	sessionID := uuid.NewString()
	if _, err := r.sessions.Create(ctx, &session.CreateRequest{
		AppName:   r.appName,
		UserID:    runnerUserID,
		SessionID: sessionID,
	}); err != nil {
		return "", errors.Wrap(err, "create ADK session")
	}
	defer func() {
		_ = r.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   r.appName,
			UserID:    runnerUserID,
			SessionID: sessionID,
		})
	}()

	var final string
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	for event, err := range r.runner.Run(ctx, runnerUserID, sessionID, content, agent.RunConfig{}) {
		if err != nil {
			return "", err
		}
		if event == nil || event.LLMResponse.Partial {
			continue
		}
		if event.Author == r.agent.Name() {
			if text := contentText(event.LLMResponse.Content); text != "" {
				final = text
			}
		}
	}
	return final, nil
}
