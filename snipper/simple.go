package snipper

import (
	"iter"
	"strings"
)

// DefaultSnippetLength is the default number of words per snippet for
// the simple snipper.
const DefaultSnippetLength = 300

// SimpleSnipper splits content on whitespace and groups the words into
// fixed-size chunks. Word order is preserved and chunks do not overlap.
type SimpleSnipper struct {
	snippetLength int
}

var _ Snipper = (*SimpleSnipper)(nil)

// NewSimpleSnipper creates a simple snipper producing snippets of
// snippetLength words. Values < 1 fall back to DefaultSnippetLength.
func NewSimpleSnipper(snippetLength int) *SimpleSnipper {
	if snippetLength < 1 {
		snippetLength = DefaultSnippetLength
	}
	return &SimpleSnipper{snippetLength: snippetLength}
}

// GenerateSnippets yields chunks of snippetLength words joined by single
// spaces. Empty chunks are suppressed, so content consisting only of
// whitespace yields nothing.
func (s *SimpleSnipper) GenerateSnippets(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		words := strings.Fields(content)
		for i := 0; i < len(words); i += s.snippetLength {
			end := i + s.snippetLength
			if end > len(words) {
				end = len(words)
			}
			if !yield(strings.Join(words[i:end], " ")) {
				return
			}
		}
	}
}
