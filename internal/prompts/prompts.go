// Package prompts renders the user prompts sent to each stage agent.
// The instructional suffix of every template is the contract with the
// model; keep it stable.
package prompts

import (
	"workflowsvc/internal/domain/workflow"
	"workflowsvc/pkg/templates"
)

const (
	analysisTemplate       = "prompts/analysis"
	recommendationTemplate = "prompts/recommendation"
	aggregateTemplate      = "prompts/aggregate"
)

// Builder renders stage prompts from a template registry
type Builder struct {
	registry *templates.Registry
}

// NewBuilder creates a builder; a nil registry selects the embedded templates
func NewBuilder(registry *templates.Registry) *Builder {
	if registry == nil {
		registry = templates.Get()
	}
	return &Builder{registry: registry}
}

type portfolioView struct {
	TotalValue float64
	Holdings   []workflow.Holding
}

func viewPortfolio(p *workflow.PortfolioContext) *portfolioView {
	if !p.HasHoldings() {
		return nil
	}
	return &portfolioView{TotalValue: p.Total(), Holdings: p.Holdings}
}

// Analysis renders the analysis stage prompt
func (b *Builder) Analysis(transcriptText string, portfolio *workflow.PortfolioContext) (string, error) {
	return b.registry.Render(analysisTemplate, struct {
		Transcript string
		Portfolio  *portfolioView
	}{transcriptText, viewPortfolio(portfolio)})
}

// Recommendation renders the recommendation stage prompt
func (b *Builder) Recommendation(analysis workflow.MarketAnalysis, portfolio *workflow.PortfolioContext) (string, error) {
	return b.registry.Render(recommendationTemplate, struct {
		Analysis  workflow.MarketAnalysis
		Portfolio *portfolioView
	}{analysis, viewPortfolio(portfolio)})
}

// Aggregate renders the consolidation prompt with one numbered block per video
func (b *Builder) Aggregate(analyses []workflow.MarketAnalysis, recs []workflow.Recommendation, portfolio *workflow.PortfolioContext) (string, error) {
	return b.registry.Render(aggregateTemplate, struct {
		Analyses        []workflow.MarketAnalysis
		Recommendations []workflow.Recommendation
		Portfolio       *portfolioView
	}{analyses, recs, viewPortfolio(portfolio)})
}

// BuildAnalysisPrompt renders the analysis prompt from the embedded templates
func BuildAnalysisPrompt(transcriptText string, portfolio *workflow.PortfolioContext) (string, error) {
	return NewBuilder(nil).Analysis(transcriptText, portfolio)
}

// BuildRecommendationPrompt renders the recommendation prompt from the embedded templates
func BuildRecommendationPrompt(analysis workflow.MarketAnalysis, portfolio *workflow.PortfolioContext) (string, error) {
	return NewBuilder(nil).Recommendation(analysis, portfolio)
}

// BuildAggregatePrompt renders the consolidation prompt from the embedded templates
func BuildAggregatePrompt(analyses []workflow.MarketAnalysis, recs []workflow.Recommendation, portfolio *workflow.PortfolioContext) (string, error) {
	return NewBuilder(nil).Aggregate(analyses, recs, portfolio)
}
