package agents

import (
	"fmt"

	"workflowsvc/internal/adapters/ai"
	"workflowsvc/internal/domain/workflow"
	"workflowsvc/internal/prompts"
	"workflowsvc/pkg/templates"
)

// FactoryDeps gathers external dependencies needed to instantiate agents.
type FactoryDeps struct {
	Provider  ai.Provider
	Templates *templates.Registry
	Configs   map[AgentType]AgentConfig
	Usage     *UsageTracker
}

// Factory creates configured stage agents.
type Factory struct {
	provider  ai.Provider
	templates *templates.Registry
	configs   map[AgentType]AgentConfig
	usage     *UsageTracker
}

// NewFactory builds an agent factory with required dependencies.
func NewFactory(deps FactoryDeps) (*Factory, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("AI provider is required")
	}
	if deps.Templates == nil {
		deps.Templates = templates.Get()
	}
	if deps.Configs == nil {
		deps.Configs = DefaultAgentConfigs
	}
	if deps.Usage == nil {
		deps.Usage = NewUsageTracker()
	}

	return &Factory{
		provider:  deps.Provider,
		templates: deps.Templates,
		configs:   deps.Configs,
		usage:     deps.Usage,
	}, nil
}

// Usage returns the tracker shared by every agent from this factory
func (f *Factory) Usage() *UsageTracker { return f.usage }

func (f *Factory) config(typ AgentType) (AgentConfig, error) {
	cfg, ok := f.configs[typ]
	if !ok {
		return AgentConfig{}, fmt.Errorf("no config for agent type %s", typ)
	}
	return cfg, nil
}

// NewAnalysisAgent creates the transcript analysis agent
func (f *Factory) NewAnalysisAgent() (*Agent[workflow.MarketAnalysis], error) {
	cfg, err := f.config(AgentMarketAnalysis)
	if err != nil {
		return nil, err
	}
	return NewAgent[workflow.MarketAnalysis](cfg, f.provider, f.templates, f.usage)
}

// NewRecommendationAgent creates the portfolio recommendation agent
func (f *Factory) NewRecommendationAgent() (*Agent[workflow.Recommendation], error) {
	cfg, err := f.config(AgentRecommendation)
	if err != nil {
		return nil, err
	}
	return NewAgent[workflow.Recommendation](cfg, f.provider, f.templates, f.usage)
}

// NewAggregateAgent creates the multi-video aggregation agent
func (f *Factory) NewAggregateAgent() (*AggregateAgent, error) {
	cfg, err := f.config(AgentAggregation)
	if err != nil {
		return nil, err
	}
	agent, err := NewAgent[workflow.AggregatedRecommendation](cfg, f.provider, f.templates, f.usage)
	if err != nil {
		return nil, err
	}
	return NewAggregateAgent(agent, prompts.NewBuilder(f.templates)), nil
}
