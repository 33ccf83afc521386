package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMarketAnalysis(t *testing.T) {
	valid := `{"conditions":"bullish","trends":["ETF inflows"],"risk_factors":[],"summary":"up"}`
	assert.NoError(t, Validate(MarketAnalysisSchema, []byte(valid)))

	err := Validate(MarketAnalysisSchema, []byte(`{"conditions":"bullish","trends":[],"risk_factors":[]}`))
	var violation *ViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "$.summary", violation.Path)

	err = Validate(MarketAnalysisSchema, []byte(`{"conditions":"x","trends":"up","risk_factors":[],"summary":"s"}`))
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "$.trends", violation.Path)
}

func TestValidateConfidenceBounds(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "lower bound", payload: `{"action":"hold","confidence":0,"suggested_actions":[]}`},
		{name: "upper bound", payload: `{"action":"hold","confidence":1,"suggested_actions":[]}`},
		{name: "optional summary null", payload: `{"action":"hold","confidence":0.5,"suggested_actions":[],"summary":null}`},
		{name: "above one", payload: `{"action":"hold","confidence":1.2,"suggested_actions":[]}`, wantErr: true},
		{name: "negative", payload: `{"action":"hold","confidence":-0.1,"suggested_actions":[]}`, wantErr: true},
		{name: "string", payload: `{"action":"hold","confidence":"high","suggested_actions":[]}`, wantErr: true},
		{
			name:    "action missing symbol",
			payload: `{"action":"hold","confidence":0.5,"suggested_actions":[{"type":"add","rationale":"r"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(RecommendationSchema, []byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAggregatedRequiresInsights(t *testing.T) {
	err := Validate(AggregatedRecommendationSchema, []byte(`{"action":"hold","confidence":0.5,"suggested_actions":[],"summary":"s"}`))
	assert.ErrorContains(t, err, "key_insights")
}

func TestValidateInvalidJSON(t *testing.T) {
	assert.Error(t, Validate(MarketAnalysisSchema, []byte(`not json`)))
}

func TestToJSONSchemaIsStrict(t *testing.T) {
	doc := ToJSONSchema(RecommendationSchema)

	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, false, doc["additionalProperties"])
	assert.Equal(t, []string{"action", "confidence", "suggested_actions", "summary"}, doc["required"])

	props := doc["properties"].(map[string]any)
	assert.Equal(t, []string{"string", "null"}, props["summary"].(map[string]any)["type"])

	confidence := props["confidence"].(map[string]any)
	assert.Equal(t, "number", confidence["type"])
	assert.Equal(t, 0.0, confidence["minimum"])
	assert.Equal(t, 1.0, confidence["maximum"])

	items := props["suggested_actions"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, []string{"type", "symbol", "rationale"}, items["required"])
}
