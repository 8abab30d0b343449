package text

import (
	"regexp"
	"strings"
)

var (
	paragraphPattern = regexp.MustCompile(`\n\s*\n\s*`)
	linePattern      = regexp.MustCompile(`\n\s*`)
)

// Normalize trims text, unifies line endings and collapses runs of whitespace while
// keeping single and paragraph line breaks.
func Normalize(text string) string {
	text = strings.TrimSpace(text)

	// \a marks line breaks while whitespace is collapsed
	text = strings.ReplaceAll(text, "\a", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	text = paragraphPattern.ReplaceAllString(text, "\a\a")
	text = linePattern.ReplaceAllString(text, "\a")

	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "\a", "\n")

	return strings.TrimSpace(text)
}
