package text

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var sentencePattern = regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|\n+|$)`)

// Speakable turns a (possibly markdown) chat reply into plain text suitable for
// speech synthesis. Code blocks and images are dropped, links keep their label.
func Speakable(input string) string {
	source := []byte(input)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))

				if node.HardLineBreak() {
					b.WriteString("\n")
				} else if node.SoftLineBreak() {
					b.WriteString(" ")
				}
			}

		case *ast.String:
			if entering {
				b.Write(node.Value)
			}

		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(source))
			}

			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			if !entering {
				b.WriteString("\n\n")
			}
		}

		return ast.WalkContinue, nil
	})

	return Normalize(b.String())
}

// Chunks splits text on sentence boundaries into pieces of at most limit runes.
// Sentences longer than limit are cut on word boundaries.
func Chunks(input string, limit int) []string {
	input = strings.TrimSpace(input)

	if input == "" {
		return nil
	}

	if limit <= 0 || utf8.RuneCountInString(input) <= limit {
		return []string{input}
	}

	var result []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			result = append(result, s)
		}

		current.Reset()
	}

	for _, sentence := range sentencePattern.FindAllString(input, -1) {
		sentence = strings.TrimSpace(sentence)

		if sentence == "" {
			continue
		}

		if utf8.RuneCountInString(sentence) > limit {
			flush()

			for _, part := range splitWords(sentence, limit) {
				result = append(result, part)
			}

			continue
		}

		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(sentence) > limit {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}

		current.WriteString(sentence)
	}

	flush()

	return result
}

func splitWords(input string, limit int) []string {
	var result []string
	var current []rune

	for _, word := range strings.Fields(input) {
		w := []rune(word)

		for len(w) > limit {
			if len(current) > 0 {
				result = append(result, string(current))
				current = nil
			}

			result = append(result, string(w[:limit]))
			w = w[limit:]
		}

		if len(current) > 0 && len(current)+1+len(w) > limit {
			result = append(result, string(current))
			current = nil
		}

		if len(current) > 0 {
			current = append(current, ' ')
		}

		current = append(current, w...)
	}

	if len(current) > 0 {
		result = append(result, string(current))
	}

	return result
}
