package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/agents"
	"workflowsvc/internal/domain/workflow"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

type mockTranscripts struct{ mock.Mock }

func (m *mockTranscripts) Check(ctx context.Context, ref workflow.VideoReference) (youtube.Track, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(youtube.Track), args.Error(1)
}

func (m *mockTranscripts) Fetch(ctx context.Context, ref workflow.VideoReference, track youtube.Track) (workflow.Transcript, error) {
	args := m.Called(ctx, ref, track)
	return args.Get(0).(workflow.Transcript), args.Error(1)
}

type mockAnalysis struct{ mock.Mock }

func (m *mockAnalysis) Run(ctx context.Context, prompt string) (workflow.MarketAnalysis, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(workflow.MarketAnalysis), args.Error(1)
}

type mockRecommendation struct{ mock.Mock }

func (m *mockRecommendation) Run(ctx context.Context, prompt string) (workflow.Recommendation, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(workflow.Recommendation), args.Error(1)
}

type mockAggregate struct{ mock.Mock }

func (m *mockAggregate) Run(ctx context.Context, req workflow.AggregateRequest) (workflow.AggregatedRecommendation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(workflow.AggregatedRecommendation), args.Error(1)
}

type fixture struct {
	transcripts    *mockTranscripts
	analysis       *mockAnalysis
	recommendation *mockRecommendation
	aggregate      *mockAggregate
	svc            *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		transcripts:    &mockTranscripts{},
		analysis:       &mockAnalysis{},
		recommendation: &mockRecommendation{},
		aggregate:      &mockAggregate{},
	}
	svc, err := NewService(Deps{
		Transcripts:    f.transcripts,
		Analysis:       f.analysis,
		Recommendation: f.recommendation,
		Aggregate:      f.aggregate,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

var (
	ref   = workflow.VideoReference{ID: "dQw4w9WgXcQ"}
	track = youtube.Track{BaseURL: "https://example.test/timedtext", LanguageCode: "en"}
)

func TestProcessRunsAllStages(t *testing.T) {
	f := newFixture(t)
	duration := 5
	transcript := workflow.Transcript{VideoID: ref.ID, VideoTitle: "Video " + ref.ID, Text: "markets look strong", Duration: &duration}
	analysis := workflow.MarketAnalysis{Conditions: "bullish", Trends: []string{"AI"}, Summary: "Strong"}
	rec := workflow.Recommendation{Action: "hold", Confidence: 0.8}

	f.transcripts.On("Check", mock.Anything, ref).Return(track, nil).Once()
	f.transcripts.On("Fetch", mock.Anything, ref, track).Return(transcript, nil).Once()
	f.analysis.On("Run", mock.Anything, mock.MatchedBy(func(p string) bool {
		return containsAll(p, "markets look strong")
	})).Return(analysis, nil).Once()
	f.recommendation.On("Run", mock.Anything, mock.MatchedBy(func(p string) bool {
		return containsAll(p, "Strong", "AI")
	})).Return(rec, nil).Once()

	resp, err := f.svc.Process(context.Background(), workflow.WorkflowRequest{YoutubeURL: videoURL})
	require.NoError(t, err)
	assert.Equal(t, transcript, resp.Transcript)
	assert.Equal(t, analysis, resp.MarketAnalysis)
	assert.Equal(t, rec, resp.Recommendation)

	f.transcripts.AssertExpectations(t)
	f.analysis.AssertExpectations(t)
	f.recommendation.AssertExpectations(t)
}

func TestProcessLogsAnalysisConditions(t *testing.T) {
	f := newFixture(t)
	transcript := workflow.Transcript{VideoID: ref.ID, Text: "rates are rising"}
	analysis := workflow.MarketAnalysis{Conditions: "bearish", Summary: "Tightening"}

	f.transcripts.On("Check", mock.Anything, ref).Return(track, nil).Once()
	f.transcripts.On("Fetch", mock.Anything, ref, track).Return(transcript, nil).Once()
	f.analysis.On("Run", mock.Anything, mock.Anything).Return(analysis, nil).Once()
	f.recommendation.On("Run", mock.Anything, mock.Anything).Return(workflow.Recommendation{Action: "sell", Confidence: 0.6}, nil).Once()

	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithRequestID(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, "req-1")

	_, err := f.svc.Process(ctx, workflow.WorkflowRequest{YoutubeURL: videoURL})
	require.NoError(t, err)

	entries := logs.FilterMessage("Market analysis completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "bearish", fields["conditions"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, ref.ID, fields["video_id"])
}

func TestProcessInvalidReferenceStopsAtResolve(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Process(context.Background(), workflow.WorkflowRequest{YoutubeURL: "https://example.com/not-a-video"})

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageResolveID, stageErr.Stage)
	assert.True(t, errors.Is(err, youtube.ErrInvalidReference))
	f.transcripts.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}

func TestProcessTranscriptsDisabledSkipsAgents(t *testing.T) {
	f := newFixture(t)
	disabled := &youtube.TranscriptError{Kind: youtube.ErrTranscriptsDisabled, VideoID: ref.ID}
	f.transcripts.On("Check", mock.Anything, ref).Return(youtube.Track{}, disabled).Once()

	_, err := f.svc.Process(context.Background(), workflow.WorkflowRequest{YoutubeURL: videoURL})

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageCheckAvailability, stageErr.Stage)
	assert.True(t, errors.Is(err, youtube.ErrTranscriptsDisabled))
	assert.Equal(t, "transcripts_disabled", youtube.ErrorType(err))

	f.transcripts.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	f.analysis.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	f.recommendation.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestProcessEmptyAnalysisSkipsRecommendation(t *testing.T) {
	f := newFixture(t)
	f.transcripts.On("Check", mock.Anything, ref).Return(track, nil).Once()
	f.transcripts.On("Fetch", mock.Anything, ref, track).Return(workflow.Transcript{VideoID: ref.ID, Text: "t"}, nil).Once()
	f.analysis.On("Run", mock.Anything, mock.Anything).
		Return(workflow.MarketAnalysis{}, errors.Wrap(agents.ErrEmptyOutput, "MarketAnalysisAgent returned empty content")).Once()

	_, err := f.svc.Process(context.Background(), workflow.WorkflowRequest{YoutubeURL: videoURL})

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageAnalyze, stageErr.Stage)
	assert.True(t, errors.Is(err, agents.ErrEmptyOutput))
	f.recommendation.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestProcessPropagatesCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.transcripts.On("Check", mock.Anything, ref).Return(youtube.Track{}, context.Canceled).Once()

	_, err := f.svc.Process(ctx, workflow.WorkflowRequest{YoutubeURL: videoURL})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAggregateDelegates(t *testing.T) {
	f := newFixture(t)
	req := workflow.AggregateRequest{
		MarketAnalyses:  []workflow.MarketAnalysis{{Summary: "s"}},
		Recommendations: []workflow.Recommendation{{Action: "hold", Confidence: 0.5}},
	}
	want := workflow.AggregatedRecommendation{Action: "rebalance", Confidence: 0.6, Summary: "ok", KeyInsights: []string{"x"}}
	f.aggregate.On("Run", mock.Anything, req).Return(want, nil).Once()

	got, err := f.svc.Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestAggregateWrapsFailure(t *testing.T) {
	f := newFixture(t)
	f.aggregate.On("Run", mock.Anything, mock.Anything).
		Return(workflow.AggregatedRecommendation{}, errors.Wrap(errors.ErrInvalidInput, "lists must be non-empty")).Once()

	_, err := f.svc.Aggregate(context.Background(), workflow.AggregateRequest{})
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageAggregate, stageErr.Stage)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}
