package youtube

import (
	"fmt"
	"regexp"

	"workflowsvc/internal/domain/workflow"
)

// URL shapes in priority order: watch, short, embed, then any watch URL
// carrying v= among other query parameters.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ResolveVideoID extracts the canonical video identifier from a URL or a bare ID.
func ResolveVideoID(urlOrID string) (workflow.VideoReference, error) {
	for _, pattern := range videoURLPatterns {
		if m := pattern.FindStringSubmatch(urlOrID); m != nil {
			return workflow.VideoReference{ID: m[1]}, nil
		}
	}

	if bareVideoID.MatchString(urlOrID) {
		return workflow.VideoReference{ID: urlOrID}, nil
	}

	return workflow.VideoReference{}, fmt.Errorf("could not extract video ID from %q: %w", urlOrID, ErrInvalidReference)
}
