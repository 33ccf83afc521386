package youtube

import (
	"fmt"

	"workflowsvc/pkg/errors"
)

// Failure kinds reported by the resolver and the transcript adapter.
// None of them is transient, so callers must not retry.
var (
	ErrInvalidReference    = errors.Wrap(errors.ErrInvalidInput, "invalid_reference")
	ErrTranscriptsDisabled = errors.Wrap(errors.ErrUnavailable, "transcripts_disabled")
	ErrNoTranscript        = errors.Wrap(errors.ErrUnavailable, "no_transcript")
	ErrVideoUnavailable    = errors.Wrap(errors.ErrUnavailable, "video_unavailable")
)

// TranscriptError names the video a failure kind applies to
type TranscriptError struct {
	Kind    error
	VideoID string
}

func (e *TranscriptError) Error() string {
	switch e.Kind {
	case ErrTranscriptsDisabled:
		return fmt.Sprintf("Transcripts are disabled for video %s", e.VideoID)
	case ErrNoTranscript:
		return fmt.Sprintf("No transcript found for video %s", e.VideoID)
	case ErrVideoUnavailable:
		return fmt.Sprintf("Video %s is unavailable", e.VideoID)
	default:
		return fmt.Sprintf("transcript failure for video %s: %v", e.VideoID, e.Kind)
	}
}

func (e *TranscriptError) Unwrap() error { return e.Kind }

func newTranscriptError(kind error, videoID string) error {
	return &TranscriptError{Kind: kind, VideoID: videoID}
}

// ErrorType returns the machine-readable name of a resolver or transcript
// failure kind, or "" when err is none of them.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrTranscriptsDisabled):
		return "transcripts_disabled"
	case errors.Is(err, ErrNoTranscript):
		return "no_transcript"
	case errors.Is(err, ErrVideoUnavailable):
		return "video_unavailable"
	default:
		return ""
	}
}
