package workflow

import (
	"github.com/shopspring/decimal"
)

// VideoReference is a validated 11-character video identifier
type VideoReference struct {
	ID string
}

func (r VideoReference) String() string { return r.ID }

// Transcript is the full caption text of one video
type Transcript struct {
	VideoID    string `json:"video_id"`
	VideoTitle string `json:"video_title"`
	Text       string `json:"text"`
	Duration   *int   `json:"duration,omitempty"` // seconds
}

// Holding is one position in the caller's portfolio
type Holding struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"` // USD
}

// PortfolioContext is supplied by the caller and threaded unchanged through every stage
type PortfolioContext struct {
	Holdings   []Holding `json:"holdings" binding:"dive"`
	TotalValue *float64  `json:"total_value,omitempty"`
}

// HasHoldings reports whether the portfolio carries anything worth rendering
func (p *PortfolioContext) HasHoldings() bool {
	return p != nil && len(p.Holdings) > 0
}

// Total returns the declared total value, or the sum of holding values when none was given
func (p *PortfolioContext) Total() float64 {
	if p == nil {
		return 0
	}
	if p.TotalValue != nil {
		return *p.TotalValue
	}

	sum := decimal.Zero
	for _, h := range p.Holdings {
		sum = sum.Add(decimal.NewFromFloat(h.Value))
	}
	total, _ := sum.Float64()
	return total
}

// MarketAnalysis is the output of the analysis stage
type MarketAnalysis struct {
	Conditions  string   `json:"conditions"`
	Trends      []string `json:"trends"`
	RiskFactors []string `json:"risk_factors"`
	Summary     string   `json:"summary"`
}

// SuggestedAction is a per-asset instruction; Type is free-form (increase, decrease, hold, add, remove)
type SuggestedAction struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol"`
	Rationale string `json:"rationale"`
}

// Recommendation is the output of the recommendation stage
type Recommendation struct {
	Action           string            `json:"action"`
	Confidence       float64           `json:"confidence"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	Summary          string            `json:"summary,omitempty"`
}

// AggregatedRecommendation consolidates several recommendations into one
type AggregatedRecommendation struct {
	Action           string            `json:"action"`
	Confidence       float64           `json:"confidence"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
	Summary          string            `json:"summary"`
	KeyInsights      []string          `json:"key_insights"`
}

// WorkflowRequest is the /process request body
type WorkflowRequest struct {
	YoutubeURL       string            `json:"youtube_url" binding:"required,url"`
	PortfolioContext *PortfolioContext `json:"portfolio_context,omitempty"`
}

// WorkflowResponse is assembled once after the last stage succeeds
type WorkflowResponse struct {
	Transcript     Transcript     `json:"transcript"`
	MarketAnalysis MarketAnalysis `json:"market_analysis"`
	Recommendation Recommendation `json:"recommendation"`
}

// AggregateRequest is the /aggregate request body
type AggregateRequest struct {
	MarketAnalyses   []MarketAnalysis  `json:"market_analyses" binding:"required"`
	Recommendations  []Recommendation  `json:"recommendations" binding:"required"`
	PortfolioContext *PortfolioContext `json:"portfolio_context,omitempty"`
}
