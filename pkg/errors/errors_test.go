package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrUnavailable, "video %s", "dQw4w9WgXcQ")

	assert.True(t, Is(err, ErrUnavailable))
	assert.Equal(t, "video dQw4w9WgXcQ: service unavailable", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := NewValidationError("youtube_url", "must be an absolute URL", "not a url")

	assert.True(t, Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "youtube_url")
}
