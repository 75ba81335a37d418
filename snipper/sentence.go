package snipper

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxTokens is the default snippet length bound for the
	// sentence snipper.
	DefaultMaxTokens = 200

	paragraphBreak = "\n\n"
)

var sentenceTerminators = []string{". ", "! ", "? "}

// SentenceSnipper cuts content at paragraph and sentence boundaries,
// preferring a paragraph break inside the next maxTokens window, then the
// nearest sentence terminator, then whitespace, and finally a hard cut at
// the last rune boundary within the maxTokens window. Candidates shorter
// than minTokens words are dropped,
// not merged into a neighbor; full corpus coverage is not guaranteed.
type SentenceSnipper struct {
	maxTokens int
	minTokens int
}

var _ Snipper = (*SentenceSnipper)(nil)

// NewSentenceSnipper creates a sentence snipper. maxTokens values < 1
// fall back to DefaultMaxTokens; minTokens values < 1 fall back to
// maxTokens / 2.
func NewSentenceSnipper(maxTokens, minTokens int) *SentenceSnipper {
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokens
	}
	if minTokens < 1 {
		minTokens = maxTokens / 2
	}
	return &SentenceSnipper{maxTokens: maxTokens, minTokens: minTokens}
}

// GenerateSnippets yields boundary-aware snippets from content.
//
// The cursor advances by at least one byte every iteration: a paragraph
// cut lands strictly after the cursor, a terminator or whitespace cut is
// positioned one past a character inside the window, and the fallback
// cut lands on the last rune boundary within the window. This guarantees
// termination even for content with no boundaries at all.
func (s *SentenceSnipper) GenerateSnippets(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cursor := 0
		for cursor < len(content) {
			var candidate string
			candidate, cursor = s.nextCandidate(content, cursor)

			candidate = strings.TrimSpace(candidate)
			if candidate == "" || len(strings.Fields(candidate)) < s.minTokens {
				continue
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// nextCandidate extracts the next raw candidate snippet starting at
// cursor and returns it with the advanced cursor position.
func (s *SentenceSnipper) nextCandidate(content string, cursor int) (string, int) {
	end := cursor + s.maxTokens
	if end >= len(content) {
		// Remainder fits in one window.
		return content[cursor:], len(content)
	}

	window := content[cursor:end]

	// Prefer a paragraph break anywhere in the window.
	if idx := strings.Index(window, paragraphBreak); idx >= 0 {
		return window[:idx], cursor + idx + len(paragraphBreak)
	}

	// Otherwise cut at the sentence terminator nearest to the window end.
	best := -1
	for _, term := range sentenceTerminators {
		if idx := strings.LastIndex(window, term); idx > best {
			best = idx
		}
	}
	if best >= 0 {
		// Keep the terminator punctuation, skip the trailing space.
		cut := best + 1
		return window[:cut], cursor + cut + 1
	}

	// No sentence boundary: back off to the nearest whitespace. The
	// whitespace rune may be wider than one byte.
	if idx := lastWhitespace(window); idx >= 0 {
		_, size := utf8.DecodeRuneInString(window[idx:])
		return window[:idx], cursor + idx + size
	}

	// Forced cut at maxTokens, backed off to the previous rune boundary
	// so a multi-byte rune is never split.
	cut := len(window)
	for cut > 0 && !utf8.RuneStart(content[cursor+cut]) {
		cut--
	}
	if cut == 0 {
		return window, end
	}
	return window[:cut], cursor + cut
}

func lastWhitespace(s string) int {
	return strings.LastIndexFunc(s, unicode.IsSpace)
}
