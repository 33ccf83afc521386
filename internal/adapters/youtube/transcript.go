package youtube

import (
	"context"
	"fmt"
	"strings"

	"workflowsvc/internal/domain/workflow"
	"workflowsvc/pkg/logger"
)

// TranscriptService turns caption tracks into a Transcript and maps the
// provider's failures onto the three transcript failure kinds.
type TranscriptService struct {
	provider  CaptionProvider
	languages []string
}

// NewTranscriptService creates the adapter. languages is the preference
// order used to pick a track and defaults to English.
func NewTranscriptService(provider CaptionProvider, languages []string) *TranscriptService {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TranscriptService{provider: provider, languages: languages}
}

// Check lists the caption tracks of ref and selects the one Fetch should
// download: a manually created track first, an auto-generated one second.
// Nothing is downloaded.
func (s *TranscriptService) Check(ctx context.Context, ref workflow.VideoReference) (Track, error) {
	log := logger.FromContext(ctx).With("video_id", ref.ID)

	list, err := s.provider.ListTracks(ctx, ref.ID)
	if err != nil {
		log.Errorw("Caption listing failed", "error", err)
		return Track{}, fmt.Errorf("list caption tracks for %s: %w", ref.ID, err)
	}

	if !list.Playable() {
		log.Warnw("Video is not playable", "status", list.Status, "reason", list.Reason)
		return Track{}, newTranscriptError(ErrVideoUnavailable, ref.ID)
	}
	if len(list.Tracks) == 0 {
		log.Warnw("Video has no caption tracks")
		return Track{}, newTranscriptError(ErrTranscriptsDisabled, ref.ID)
	}

	track, ok := selectTrack(list.Tracks, s.languages)
	if !ok {
		log.Warnw("No caption track in requested languages", "languages", s.languages, "available", len(list.Tracks))
		return Track{}, newTranscriptError(ErrNoTranscript, ref.ID)
	}

	log.Debugw("Caption track selected", "language", track.LanguageCode, "generated", track.Generated)
	return track, nil
}

// Fetch downloads track and assembles the transcript of ref
func (s *TranscriptService) Fetch(ctx context.Context, ref workflow.VideoReference, track Track) (workflow.Transcript, error) {
	log := logger.FromContext(ctx).With("video_id", ref.ID)

	segments, err := s.provider.FetchSegments(ctx, track)
	if err != nil {
		log.Errorw("Caption download failed", "error", err)
		return workflow.Transcript{}, fmt.Errorf("fetch captions for %s: %w", ref.ID, err)
	}

	transcript := assemble(ref.ID, segments)
	if strings.TrimSpace(transcript.Text) == "" {
		log.Warnw("Caption track is empty", "language", track.LanguageCode)
		return workflow.Transcript{}, newTranscriptError(ErrNoTranscript, ref.ID)
	}

	log.Infow("Transcript fetched", "segments", len(segments), "chars", len(transcript.Text))
	return transcript, nil
}

// Transcript runs Check and Fetch back to back
func (s *TranscriptService) Transcript(ctx context.Context, ref workflow.VideoReference) (workflow.Transcript, error) {
	track, err := s.Check(ctx, ref)
	if err != nil {
		return workflow.Transcript{}, err
	}
	return s.Fetch(ctx, ref, track)
}

func selectTrack(tracks []Track, languages []string) (Track, bool) {
	for _, generated := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if t.Generated == generated && t.LanguageCode == lang {
					return t, true
				}
			}
		}
	}
	return Track{}, false
}

// assemble joins segment texts in order. Duration is the end of the last
// segment rather than a sum over segments.
func assemble(videoID string, segments []Segment) workflow.Transcript {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}

	transcript := workflow.Transcript{
		VideoID:    videoID,
		VideoTitle: fmt.Sprintf("Video %s", videoID),
		Text:       strings.Join(texts, " "),
	}
	if n := len(segments); n > 0 {
		last := segments[n-1]
		duration := int(last.Start + last.Duration)
		transcript.Duration = &duration
	}
	return transcript
}
