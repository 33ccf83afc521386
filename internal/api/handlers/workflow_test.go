package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/agents"
	"workflowsvc/internal/domain/workflow"
	workflowsvc "workflowsvc/internal/services/workflow"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Process(ctx context.Context, req workflow.WorkflowRequest) (*workflow.WorkflowResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*workflow.WorkflowResponse)
	return resp, args.Error(1)
}

func (m *mockService) Aggregate(ctx context.Context, req workflow.AggregateRequest) (*workflow.AggregatedRecommendation, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*workflow.AggregatedRecommendation)
	return resp, args.Error(1)
}

func newTestRouter(svc WorkflowService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := logger.WithRequestID(c.Request.Context(), logger.NewNop(), "req-test")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	h := NewWorkflowHandler(svc)
	r.POST("/process", h.Process)
	r.POST("/aggregate", h.Aggregate)
	return r
}

func post(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope ErrorResponse
	if rec.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	}
	return rec, envelope
}

const validProcessBody = `{"youtube_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`

func TestProcessSuccess(t *testing.T) {
	svc := &mockService{}
	svc.On("Process", mock.Anything, mock.MatchedBy(func(req workflow.WorkflowRequest) bool {
		return req.YoutubeURL == "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	})).Return(&workflow.WorkflowResponse{
		Transcript:     workflow.Transcript{VideoID: "dQw4w9WgXcQ", Text: "hello"},
		MarketAnalysis: workflow.MarketAnalysis{Summary: "calm"},
		Recommendation: workflow.Recommendation{Action: "hold", Confidence: 0.7},
	}, nil)

	rec, _ := post(t, newTestRouter(svc), "/process", validProcessBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp workflow.WorkflowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dQw4w9WgXcQ", resp.Transcript.VideoID)
	assert.Equal(t, "hold", resp.Recommendation.Action)
	svc.AssertExpectations(t)
}

func TestProcessRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"youtube_url":`,
		"missing url":    `{}`,
		"not a url":      `{"youtube_url":"not a url"}`,
		"empty symbol":   `{"youtube_url":"https://youtu.be/dQw4w9WgXcQ","portfolio_context":{"holdings":[{"symbol":"","quantity":1,"value":2}]}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockService{}
			rec, envelope := post(t, newTestRouter(svc), "/process", body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, ErrorTypeValidation, envelope.ErrorType)
			assert.Equal(t, "req-test", envelope.RequestID)
			svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessMapsTranscriptFailures(t *testing.T) {
	svc := &mockService{}
	svc.On("Process", mock.Anything, mock.Anything).Return(nil, &workflowsvc.StageError{
		Stage: workflowsvc.StageCheckAvailability,
		Err:   &youtube.TranscriptError{Kind: youtube.ErrTranscriptsDisabled, VideoID: "dQw4w9WgXcQ"},
	})

	rec, envelope := post(t, newTestRouter(svc), "/process", validProcessBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "transcripts_disabled", envelope.ErrorType)
	assert.Equal(t, "dQw4w9WgXcQ", envelope.VideoID)
	assert.Equal(t, "Transcripts are disabled for video dQw4w9WgXcQ", envelope.Detail)
}

func TestProcessMapsInvalidReference(t *testing.T) {
	svc := &mockService{}
	svc.On("Process", mock.Anything, mock.Anything).Return(nil, &workflowsvc.StageError{
		Stage: workflowsvc.StageResolveID,
		Err:   errors.Wrap(youtube.ErrInvalidReference, "could not extract video id from https://example.com/x"),
	})

	rec, envelope := post(t, newTestRouter(svc), "/process", `{"youtube_url":"https://example.com/x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_reference", envelope.ErrorType)
	assert.Contains(t, envelope.Detail, "could not extract video id")
}

func TestProcessMapsAgentFailures(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		errorType string
	}{
		{"provider", &agents.ProviderError{Agent: "MarketAnalysisAgent", Provider: "openai", Err: errors.New("boom")}, ErrorTypeProvider},
		{"empty output", errors.Wrap(agents.ErrEmptyOutput, "MarketAnalysisAgent"), ErrorTypeEmptyOutput},
		{"schema violation", errors.Wrap(agents.ErrSchemaViolation, "RecommendationAgent"), ErrorTypeSchemaViolation},
		{"unexpected", &agents.UnexpectedError{Agent: "RecommendationAgent", Err: errors.New("nil pointer")}, ErrorTypeUnexpected},
		{"unclassified", errors.New("disk on fire"), ErrorTypeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Process", mock.Anything, mock.Anything).Return(nil, &workflowsvc.StageError{
				Stage: workflowsvc.StageAnalyze,
				Err:   tc.err,
			})

			rec, envelope := post(t, newTestRouter(svc), "/process", validProcessBody)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tc.errorType, envelope.ErrorType)
			assert.True(t, strings.HasPrefix(envelope.Detail, "Failed to process video: "), envelope.Detail)
			assert.Equal(t, "req-test", envelope.RequestID)
		})
	}
}

func TestProcessMapsTimeoutAndCancellation(t *testing.T) {
	svc := &mockService{}
	svc.On("Process", mock.Anything, mock.Anything).Return(nil, errors.Wrap(context.DeadlineExceeded, "analyze")).Once()
	svc.On("Process", mock.Anything, mock.Anything).Return(nil, errors.Wrap(context.Canceled, "fetch")).Once()
	r := newTestRouter(svc)

	rec, envelope := post(t, r, "/process", validProcessBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrorTypeTimeout, envelope.ErrorType)

	rec, envelope = post(t, r, "/process", validProcessBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrorTypeClientClosed, envelope.ErrorType)
}

func TestProviderTimeoutIsProviderError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name: "deadline inside provider call",
			err: &workflowsvc.StageError{Stage: workflowsvc.StageAnalyze, Err: &agents.ProviderError{
				Agent: "market_analysis", Provider: "openai", Err: context.DeadlineExceeded,
			}},
			wantType: ErrorTypeProvider,
		},
		{
			name: "cancellation inside provider call",
			err: &workflowsvc.StageError{Stage: workflowsvc.StageRecommend, Err: &agents.ProviderError{
				Agent: "recommendation", Provider: "claude", Err: context.Canceled,
			}},
			wantType: ErrorTypeProvider,
		},
		{
			name: "deadline inside unexpected failure",
			err: &workflowsvc.StageError{Stage: workflowsvc.StageAnalyze, Err: &agents.UnexpectedError{
				Agent: "market_analysis", Err: context.DeadlineExceeded,
			}},
			wantType: ErrorTypeUnexpected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mapError(tc.err, "Failed to process video")
			assert.Equal(t, http.StatusInternalServerError, m.status)
			assert.Equal(t, tc.wantType, m.errorType)
			assert.True(t, strings.HasPrefix(m.detail, "Failed to process video: "))
		})
	}
}

func TestAggregateLengthMismatch(t *testing.T) {
	svc := &mockService{}
	svc.On("Aggregate", mock.Anything, mock.Anything).Return(nil, &workflowsvc.StageError{
		Stage: workflowsvc.StageAggregate,
		Err: errors.Wrapf(errors.ErrInvalidInput,
			"market_analyses and recommendations must have the same length (%d != %d)", 2, 1),
	})

	body := `{"market_analyses":[{"summary":"a"},{"summary":"b"}],"recommendations":[{"action":"hold","confidence":0.5}]}`
	rec, envelope := post(t, newTestRouter(svc), "/aggregate", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrorTypeInvalidInput, envelope.ErrorType)
	assert.Equal(t, "market_analyses and recommendations must have the same length (2 != 1)", envelope.Detail)
}

func TestAggregateRequiresBothLists(t *testing.T) {
	svc := &mockService{}

	for _, body := range []string{
		`{"recommendations":[{"action":"hold","confidence":0.5}]}`,
		`{"market_analyses":[{"summary":"a"}]}`,
		`{}`,
	} {
		rec, envelope := post(t, newTestRouter(svc), "/aggregate", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		assert.Equal(t, ErrorTypeValidation, envelope.ErrorType, body)
	}
	svc.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestAggregateInvalidItemIsValidationError(t *testing.T) {
	svc := &mockService{}
	svc.On("Aggregate", mock.Anything, mock.Anything).Return(nil, &workflowsvc.StageError{
		Stage: workflowsvc.StageAggregate,
		Err:   errors.NewValidationError("recommendations[0].confidence", "must be within [0.0, 1.0]", 7.5),
	})

	body := `{"market_analyses":[{"summary":"a"}],"recommendations":[{"action":"hold","confidence":7.5}]}`
	rec, envelope := post(t, newTestRouter(svc), "/aggregate", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, ErrorTypeValidation, envelope.ErrorType)
	assert.Contains(t, envelope.Detail, "recommendations[0].confidence")
}

func TestAggregateSuccess(t *testing.T) {
	svc := &mockService{}
	svc.On("Aggregate", mock.Anything, mock.Anything).Return(&workflow.AggregatedRecommendation{
		Action:      "hold",
		Confidence:  0.6,
		Summary:     "mixed signals",
		KeyInsights: []string{"rates"},
	}, nil)

	body := `{"market_analyses":[{"summary":"a"}],"recommendations":[{"action":"hold","confidence":0.5}]}`
	rec, _ := post(t, newTestRouter(svc), "/aggregate", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp workflow.AggregatedRecommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"rates"}, resp.KeyInsights)
}

func TestMapErrorTrimsTaxonomySuffix(t *testing.T) {
	err := &workflowsvc.StageError{
		Stage: workflowsvc.StageAggregate,
		Err:   errors.Wrap(errors.ErrInvalidInput, "both market_analyses and recommendations lists must be non-empty"),
	}

	m := mapError(err, "Failed to aggregate recommendations")
	assert.Equal(t, http.StatusBadRequest, m.status)
	assert.Equal(t, "both market_analyses and recommendations lists must be non-empty", m.detail)
}
