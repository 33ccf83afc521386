package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowsvc/pkg/errors"
)

func TestResolveVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"

	inputs := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ",
		"dQw4w9WgXcQ",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			ref, err := ResolveVideoID(in)
			require.NoError(t, err)
			assert.Equal(t, id, ref.ID)
		})
	}
}

func TestResolveVideoIDRejects(t *testing.T) {
	inputs := []string{
		"",
		"short",
		"dQw4w9WgXcQX",
		"dQw4w9WgX!Q",
		"  dQw4w9WgXcQ  ",
		"dQw4w9WgXcQ\n",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/channel/UC123",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ResolveVideoID(in)
			assert.ErrorIs(t, err, ErrInvalidReference)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
			assert.Equal(t, "invalid_reference", ErrorType(err))
		})
	}
}
