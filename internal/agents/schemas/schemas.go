package schemas

import "google.golang.org/genai"

func float64Ptr(v float64) *float64 {
	return &v
}

func suggestedActionsSchema() *genai.Schema {
	return &genai.Schema{
		Type:        "ARRAY",
		Description: "Specific actions per asset",
		Items: &genai.Schema{
			Type: "OBJECT",
			Properties: map[string]*genai.Schema{
				"type": {
					Type:        "STRING",
					Description: "Action kind: increase, decrease, hold, add or remove",
				},
				"symbol": {
					Type:        "STRING",
					Description: "Asset symbol the action applies to",
				},
				"rationale": {
					Type:        "STRING",
					Description: "Why this action is suggested",
				},
			},
			Required:         []string{"type", "symbol", "rationale"},
			PropertyOrdering: []string{"type", "symbol", "rationale"},
		},
	}
}

func confidenceSchema() *genai.Schema {
	return &genai.Schema{
		Type:        "NUMBER",
		Description: "Confidence in the recommendation between 0.0 and 1.0",
		Minimum:     float64Ptr(0),
		Maximum:     float64Ptr(1),
	}
}

// MarketAnalysisSchema is the output schema of the analysis agent
var MarketAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"conditions": {
			Type:        "STRING",
			Description: "Overall market conditions: bullish, bearish or neutral",
		},
		"trends": {
			Type:        "ARRAY",
			Description: "Key trends identified in the transcript",
			Items:       &genai.Schema{Type: "STRING"},
		},
		"risk_factors": {
			Type:        "ARRAY",
			Description: "Risk factors mentioned in the transcript",
			Items:       &genai.Schema{Type: "STRING"},
		},
		"summary": {
			Type:        "STRING",
			Description: "Detailed summary of market conditions",
		},
	},
	Required:         []string{"conditions", "trends", "risk_factors", "summary"},
	PropertyOrdering: []string{"conditions", "trends", "risk_factors", "summary"},
}

// RecommendationSchema is the output schema of the recommendation agent
var RecommendationSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"action": {
			Type:        "STRING",
			Description: "Overall action type (rebalance, hold, diversify, increase allocation, ...)",
		},
		"confidence":        confidenceSchema(),
		"suggested_actions": suggestedActionsSchema(),
		"summary": {
			Type:        "STRING",
			Description: "Summary of the recommendation rationale",
		},
	},
	Required:         []string{"action", "confidence", "suggested_actions"},
	PropertyOrdering: []string{"action", "confidence", "suggested_actions", "summary"},
}

// AggregatedRecommendationSchema is the output schema of the aggregation agent
var AggregatedRecommendationSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"action": {
			Type:        "STRING",
			Description: "Overall recommended action",
		},
		"confidence":        confidenceSchema(),
		"suggested_actions": suggestedActionsSchema(),
		"summary": {
			Type:        "STRING",
			Description: "Detailed rationale",
		},
		"key_insights": {
			Type:        "ARRAY",
			Description: "Main insights from the aggregated analysis",
			Items:       &genai.Schema{Type: "STRING"},
		},
	},
	Required:         []string{"action", "confidence", "suggested_actions", "summary", "key_insights"},
	PropertyOrdering: []string{"action", "confidence", "suggested_actions", "summary", "key_insights"},
}
