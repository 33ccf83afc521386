package agents

import "workflowsvc/internal/adapters/config"

func configForTest() config.AIConfig {
	return config.AIConfig{
		AnalysisModel:       "gpt-4o",
		RecommendationModel: "gpt-4o",
		AggregateModel:      "gpt-5.2",
		MaxOutputTokens:     2048,
	}
}
