package link_test

import (
	"testing"

	"github.com/serroba/linkclean/internal/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips query",
			input:    "https://www.tiktok.com/@user/video/12345?is_from_webapp=1&sender_device=pc",
			expected: "https://www.tiktok.com/@user/video/12345",
		},
		{
			name:     "strips fragment",
			input:    "https://www.tiktok.com/@user/video/12345#comments",
			expected: "https://www.tiktok.com/@user/video/12345",
		},
		{
			name:     "keeps clean url unchanged",
			input:    "https://www.tiktok.com/@user/video/12345",
			expected: "https://www.tiktok.com/@user/video/12345",
		},
		{
			name:     "keeps escaped path",
			input:    "https://www.tiktok.com/@user.name/video/1%202?x=1",
			expected: "https://www.tiktok.com/@user.name/video/1%202",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := link.Canonicalize(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("rejects relative location", func(t *testing.T) {
		_, err := link.Canonicalize("/@user/video/12345")

		assert.ErrorIs(t, err, link.ErrResolution)
	})

	t.Run("rejects unparsable location", func(t *testing.T) {
		_, err := link.Canonicalize("https://exa mple.com/%zz")

		assert.ErrorIs(t, err, link.ErrResolution)
	})
}
