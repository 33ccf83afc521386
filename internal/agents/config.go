package agents

import (
	"google.golang.org/genai"

	"workflowsvc/internal/adapters/config"
	"workflowsvc/internal/agents/schemas"
)

// AgentConfig captures runtime settings for an agent instance.
type AgentConfig struct {
	Type                 AgentType
	Name                 string
	Description          string
	SystemPromptTemplate string
	SchemaName           string
	Schema               *genai.Schema
	Model                string
	MaxTokens            int
}

// DefaultAgentConfigs holds prompts and schemas per stage. Models are filled from config.
var DefaultAgentConfigs = map[AgentType]AgentConfig{
	AgentMarketAnalysis: {
		Type:                 AgentMarketAnalysis,
		Name:                 "MarketAnalysisAgent",
		Description:          "Extracts market conditions from a video transcript",
		SystemPromptTemplate: "agents/analysis",
		SchemaName:           "market_analysis",
		Schema:               schemas.MarketAnalysisSchema,
	},
	AgentRecommendation: {
		Type:                 AgentRecommendation,
		Name:                 "RecommendationAgent",
		Description:          "Turns a market analysis into a portfolio recommendation",
		SystemPromptTemplate: "agents/recommendation",
		SchemaName:           "recommendation",
		Schema:               schemas.RecommendationSchema,
	},
	AgentAggregation: {
		Type:                 AgentAggregation,
		Name:                 "AggregateRecommendationAgent",
		Description:          "Consolidates per-video recommendations into one",
		SystemPromptTemplate: "agents/aggregate",
		SchemaName:           "aggregated_recommendation",
		Schema:               schemas.AggregatedRecommendationSchema,
	},
}

// ConfigsFromAI returns the default configs with models and token limits from cfg.
func ConfigsFromAI(cfg config.AIConfig) map[AgentType]AgentConfig {
	models := map[AgentType]string{
		AgentMarketAnalysis: cfg.AnalysisModel,
		AgentRecommendation: cfg.RecommendationModel,
		AgentAggregation:    cfg.AggregateModel,
	}

	out := make(map[AgentType]AgentConfig, len(DefaultAgentConfigs))
	for typ, c := range DefaultAgentConfigs {
		c.Model = models[typ]
		c.MaxTokens = cfg.MaxOutputTokens
		out[typ] = c
	}
	return out
}
