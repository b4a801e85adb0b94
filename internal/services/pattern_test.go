package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPattern(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
		found    bool
	}{
		{
			name:     "full code with spaces",
			filename: "01 I A pencil.jpg",
			expected: "01 I A",
			found:    true,
		},
		{
			name:     "full code without spaces",
			filename: "01IApencil.jpg",
			expected: "01 I A",
			found:    true,
		},
		{
			name:     "full code lowercase",
			filename: "03 r b door.png",
			expected: "03 R B",
			found:    true,
		},
		{
			name:     "full code mixed spacing",
			filename: "05M E window.webp",
			expected: "05 M E",
			found:    true,
		},
		{
			name:     "partial code two tokens",
			filename: "07 K flower.jpg",
			expected: "07 K",
			found:    true,
		},
		{
			name:     "partial code with hyphen",
			filename: "04-B chair.png",
			expected: "04 B",
			found:    true,
		},
		{
			name:     "digits only",
			filename: "12.jpg",
			expected: "12",
			found:    true,
		},
		{
			name:     "no digit-led pattern",
			filename: "icon.png",
			found:    false,
		},
		{
			name:     "path prefix is stripped",
			filename: "book1/unit3/02 R A ruler.jpg",
			expected: "02 R A",
			found:    true,
		},
		{
			name:     "video extension",
			filename: "06 V C song.mp4",
			expected: "06 V C",
			found:    true,
		},
		{
			name:     "empty filename",
			filename: "",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, found := ExtractPattern(tt.filename)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.expected, pattern)
			}
		})
	}
}

func TestExtractPattern_Canonicalization(t *testing.T) {
	// Every spacing/case variant of the same code normalizes to the
	// same canonical form
	variants := []string{
		"01 I A pencil.jpg",
		"01IA pencil.jpg",
		"01 i a pencil.jpg",
		"01I A pencil.jpg",
	}

	for _, v := range variants {
		pattern, found := ExtractPattern(v)
		assert.True(t, found, v)
		assert.Equal(t, "01 I A", pattern, v)
	}
}
