package workflow

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"workflowsvc/pkg/errors"
)

// Validate checks the request beyond what the JSON binding enforces
func (r WorkflowRequest) Validate() error {
	u, err := url.Parse(strings.TrimSpace(r.YoutubeURL))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.NewValidationError("youtube_url", "must be an absolute URL", r.YoutubeURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewValidationError("youtube_url", "scheme must be http or https", r.YoutubeURL)
	}
	return r.PortfolioContext.Validate()
}

// Validate rejects holdings without a symbol
func (p *PortfolioContext) Validate() error {
	if p == nil {
		return nil
	}
	for _, h := range p.Holdings {
		if strings.TrimSpace(h.Symbol) == "" {
			return errors.NewValidationError("portfolio_context.holdings.symbol", "must not be empty", h.Symbol)
		}
	}
	return nil
}

// Validate enforces the aggregation precondition (both lists non-empty and of
// equal length), then checks every item against the stage output model.
func (r AggregateRequest) Validate() error {
	if len(r.MarketAnalyses) == 0 || len(r.Recommendations) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "both market_analyses and recommendations lists must be non-empty")
	}
	if len(r.MarketAnalyses) != len(r.Recommendations) {
		return errors.Wrapf(errors.ErrInvalidInput,
			"market_analyses and recommendations must have the same length (%d != %d)",
			len(r.MarketAnalyses), len(r.Recommendations))
	}
	for i, a := range r.MarketAnalyses {
		if err := a.Validate(); err != nil {
			return itemError("market_analyses", i, err)
		}
	}
	for i, rec := range r.Recommendations {
		if err := rec.Validate(); err != nil {
			return itemError("recommendations", i, err)
		}
	}
	return r.PortfolioContext.Validate()
}

// itemError prefixes a field error with the list position, e.g. recommendations[1].confidence
func itemError(list string, index int, err error) error {
	var verr *errors.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return errors.NewValidationError(fmt.Sprintf("%s[%d].%s", list, index, verr.Field), verr.Message, verr.Value)
}

// Validate checks the analysis stage output
func (a MarketAnalysis) Validate() error {
	if strings.TrimSpace(a.Summary) == "" {
		return errors.NewValidationError("summary", "must not be empty", a.Summary)
	}
	return nil
}

// Validate checks the recommendation stage output. Confidence is never clamped.
func (r Recommendation) Validate() error {
	return validateConfidence(r.Confidence)
}

// Validate checks the aggregation stage output
func (r AggregatedRecommendation) Validate() error {
	if err := validateConfidence(r.Confidence); err != nil {
		return err
	}
	if strings.TrimSpace(r.Summary) == "" {
		return errors.NewValidationError("summary", "must not be empty", r.Summary)
	}
	return nil
}

func validateConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return errors.NewValidationError("confidence", "must be within [0.0, 1.0]", c)
	}
	return nil
}
