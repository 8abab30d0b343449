package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSpeakable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text",
			input: "I'll be back.",
			want:  "I'll be back.",
		},
		{
			name:  "emphasis and links",
			input: "**Target** acquired. See [the manual](https://example.org).",
			want:  "Target acquired. See the manual.",
		},
		{
			name:  "code block dropped",
			input: "Run this:\n\n```sh\nrm -rf /\n```\n\nDone.",
			want:  "Run this:\n\nDone.",
		},
		{
			name:  "heading and list",
			input: "# Status\n\n- armed\n- ready",
			want:  "Status\n\narmed\n\nready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Speakable(tt.input))
		})
	}
}

func TestChunks(t *testing.T) {
	require.Nil(t, Chunks("   ", 10))
	require.Equal(t, []string{"Short."}, Chunks("Short.", 100))

	input := "First sentence here. Second sentence here. Third one."
	chunks := Chunks(input, 25)

	require.Equal(t, []string{"First sentence here.", "Second sentence here.", "Third one."}, chunks)

	long := strings.Repeat("word ", 50)

	for _, c := range Chunks(long, 30) {
		require.LessOrEqual(t, utf8.RuneCountInString(c), 30)
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a b\nc\n\nd", Normalize("  a   b\r\nc\n\n\n  d  "))
}
