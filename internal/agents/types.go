package agents

// AgentType enumerates the workflow stage agents.
type AgentType string

const (
	AgentMarketAnalysis AgentType = "market_analysis"
	AgentRecommendation AgentType = "recommendation"
	AgentAggregation    AgentType = "aggregation"
)

// Output is implemented by every structured agent result
type Output interface {
	Validate() error
}
