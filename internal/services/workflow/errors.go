package workflow

import "fmt"

// Stage names one step of the video workflow
type Stage string

const (
	StageResolveID         Stage = "resolve_id"
	StageCheckAvailability Stage = "check_availability"
	StageFetchTranscript   Stage = "fetch_transcript"
	StageAnalyze           Stage = "analyze"
	StageRecommend         Stage = "recommend"
	StageAggregate         Stage = "aggregate"
)

// StageError records which step failed. The HTTP layer maps Err.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
