package workflow

import (
	"context"
	"time"

	"workflowsvc/internal/adapters/youtube"
	"workflowsvc/internal/domain/workflow"
	"workflowsvc/internal/metrics"
	"workflowsvc/internal/prompts"
	"workflowsvc/internal/trace"
	"workflowsvc/pkg/errors"
	"workflowsvc/pkg/logger"
)

// TranscriptSource checks caption availability and downloads the selected track
type TranscriptSource interface {
	Check(ctx context.Context, ref workflow.VideoReference) (youtube.Track, error)
	Fetch(ctx context.Context, ref workflow.VideoReference, track youtube.Track) (workflow.Transcript, error)
}

// AnalysisAgent turns a transcript prompt into a market analysis
type AnalysisAgent interface {
	Run(ctx context.Context, prompt string) (workflow.MarketAnalysis, error)
}

// RecommendationAgent turns an analysis prompt into a recommendation
type RecommendationAgent interface {
	Run(ctx context.Context, prompt string) (workflow.Recommendation, error)
}

// AggregateAgent synthesizes several per-video results
type AggregateAgent interface {
	Run(ctx context.Context, req workflow.AggregateRequest) (workflow.AggregatedRecommendation, error)
}

// Deps wires the service collaborators
type Deps struct {
	Transcripts    TranscriptSource
	Analysis       AnalysisAgent
	Recommendation RecommendationAgent
	Aggregate      AggregateAgent
	Prompts        *prompts.Builder
}

// Service runs the video-to-recommendation workflow:
// resolve id, check availability, fetch transcript, analyze, recommend.
type Service struct {
	transcripts    TranscriptSource
	analysis       AnalysisAgent
	recommendation RecommendationAgent
	aggregate      AggregateAgent
	prompts        *prompts.Builder
}

// NewService creates the workflow service
func NewService(deps Deps) (*Service, error) {
	if deps.Transcripts == nil || deps.Analysis == nil || deps.Recommendation == nil || deps.Aggregate == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "workflow service requires transcripts and all three agents")
	}
	if deps.Prompts == nil {
		deps.Prompts = prompts.NewBuilder(nil)
	}

	return &Service{
		transcripts:    deps.Transcripts,
		analysis:       deps.Analysis,
		recommendation: deps.Recommendation,
		aggregate:      deps.Aggregate,
		prompts:        deps.Prompts,
	}, nil
}

// Process runs every stage in order and stops at the first failure, which is
// returned as a *StageError.
func (s *Service) Process(ctx context.Context, req workflow.WorkflowRequest) (*workflow.WorkflowResponse, error) {
	ctx, span := trace.StartSpan(ctx, "workflow.process")
	var err error
	defer func() { trace.End(span, err) }()

	log := logger.FromContext(ctx)
	log.Infow("Workflow started", "youtube_url", req.YoutubeURL, "has_portfolio", req.PortfolioContext.HasHoldings())

	ref, err := runStage(ctx, StageResolveID, func(context.Context) (workflow.VideoReference, error) {
		return youtube.ResolveVideoID(req.YoutubeURL)
	})
	if err != nil {
		return nil, err
	}

	ctx = logger.ContextWith(ctx, "video_id", ref.ID)

	track, err := runStage(ctx, StageCheckAvailability, func(ctx context.Context) (youtube.Track, error) {
		return s.transcripts.Check(ctx, ref)
	})
	if err != nil {
		return nil, err
	}

	transcript, err := runStage(ctx, StageFetchTranscript, func(ctx context.Context) (workflow.Transcript, error) {
		return s.transcripts.Fetch(ctx, ref, track)
	})
	if err != nil {
		return nil, err
	}

	analysis, err := runStage(ctx, StageAnalyze, func(ctx context.Context) (workflow.MarketAnalysis, error) {
		prompt, perr := s.prompts.Analysis(transcript.Text, req.PortfolioContext)
		if perr != nil {
			return workflow.MarketAnalysis{}, errors.Wrap(perr, "render analysis prompt")
		}
		return s.analysis.Run(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Infow("Market analysis completed",
		"conditions", analysis.Conditions,
		"trends", len(analysis.Trends),
	)

	recommendation, err := runStage(ctx, StageRecommend, func(ctx context.Context) (workflow.Recommendation, error) {
		prompt, perr := s.prompts.Recommendation(analysis, req.PortfolioContext)
		if perr != nil {
			return workflow.Recommendation{}, errors.Wrap(perr, "render recommendation prompt")
		}
		return s.recommendation.Run(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("Workflow completed",
		"action", recommendation.Action,
		"confidence", recommendation.Confidence,
	)

	return &workflow.WorkflowResponse{
		Transcript:     transcript,
		MarketAnalysis: analysis,
		Recommendation: recommendation,
	}, nil
}

// Aggregate combines several per-video analyses and recommendations into one
func (s *Service) Aggregate(ctx context.Context, req workflow.AggregateRequest) (*workflow.AggregatedRecommendation, error) {
	logger.FromContext(ctx).Infow("Aggregation started",
		"videos", len(req.MarketAnalyses),
		"has_portfolio", req.PortfolioContext.HasHoldings(),
	)

	out, err := runStage(ctx, StageAggregate, func(ctx context.Context) (workflow.AggregatedRecommendation, error) {
		return s.aggregate.Run(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("Aggregation completed", "action", out.Action, "confidence", out.Confidence)
	return &out, nil
}

// runStage wraps one step with a span, stage metrics and request-scoped logs
func runStage[T any](ctx context.Context, stage Stage, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := trace.StartSpan(ctx, "workflow."+string(stage))
	log := logger.FromContext(ctx).With("stage", string(stage))
	start := time.Now()

	log.Debugw("Stage started")
	out, err := fn(ctx)
	elapsed := time.Since(start)

	metrics.RecordStage(string(stage), elapsed, err)
	trace.End(span, err)

	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) || errors.Is(err, errors.ErrUnavailable) {
			log.Warnw("Stage rejected request", "error", err, "duration_ms", elapsed.Milliseconds())
		} else {
			log.Errorw("Stage failed", "error", err, "duration_ms", elapsed.Milliseconds())
		}
		return out, &StageError{Stage: stage, Err: err}
	}

	log.Infow("Stage completed", "duration_ms", elapsed.Milliseconds())
	return out, nil
}
