package agents

import (
	"context"

	"workflowsvc/internal/domain/workflow"
	"workflowsvc/internal/prompts"
	"workflowsvc/pkg/logger"
)

// AggregateAgent synthesizes one recommendation from several per-video results.
type AggregateAgent struct {
	agent   *Agent[workflow.AggregatedRecommendation]
	prompts *prompts.Builder
}

// NewAggregateAgent wraps agent with the aggregation precondition. A nil
// builder uses the embedded prompt templates.
func NewAggregateAgent(agent *Agent[workflow.AggregatedRecommendation], builder *prompts.Builder) *AggregateAgent {
	if builder == nil {
		builder = prompts.NewBuilder(nil)
	}
	return &AggregateAgent{agent: agent, prompts: builder}
}

// Run checks that both lists are non-empty and of equal length before any
// model call, then renders the aggregation prompt and runs the agent.
func (a *AggregateAgent) Run(ctx context.Context, req workflow.AggregateRequest) (workflow.AggregatedRecommendation, error) {
	log := logger.FromContext(ctx).With("agent", a.agent.Name())

	if err := req.Validate(); err != nil {
		log.Warnw("Aggregation request rejected", "error", err)
		return workflow.AggregatedRecommendation{}, err
	}

	prompt, err := a.prompts.Aggregate(req.MarketAnalyses, req.Recommendations, req.PortfolioContext)
	if err != nil {
		log.Errorw("Failed to render aggregation prompt", "error", err)
		return workflow.AggregatedRecommendation{}, &UnexpectedError{Agent: a.agent.Name(), Err: err}
	}

	return a.agent.Run(ctx, prompt)
}
