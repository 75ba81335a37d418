package snipper

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func TestSimpleSnipper_ChunkCount(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		length    int
		want      int
	}{
		{name: "exact multiple", wordCount: 100, length: 50, want: 2},
		{name: "remainder chunk", wordCount: 101, length: 50, want: 3},
		{name: "single short chunk", wordCount: 10, length: 50, want: 1},
		{name: "one word", wordCount: 1, length: 50, want: 1},
		{name: "empty content", wordCount: 0, length: 50, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimpleSnipper(tt.length)
			snippets := slices.Collect(s.GenerateSnippets(words(tt.wordCount)))
			assert.Len(t, snippets, tt.want)
		})
	}
}

func TestSimpleSnipper_PreservesWordSequence(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog near the riverbank at dawn"
	s := NewSimpleSnipper(4)

	var rejoined []string
	for snippet := range s.GenerateSnippets(content) {
		rejoined = append(rejoined, strings.Fields(snippet)...)
	}

	require.Equal(t, strings.Fields(content), rejoined)
}

func TestSimpleSnipper_CollapsesWhitespace(t *testing.T) {
	content := "alpha\t beta\n\n gamma   delta"
	s := NewSimpleSnipper(2)

	snippets := slices.Collect(s.GenerateSnippets(content))
	require.Equal(t, []string{"alpha beta", "gamma delta"}, snippets)
}

func TestSimpleSnipper_WhitespaceOnlyContent(t *testing.T) {
	s := NewSimpleSnipper(10)
	snippets := slices.Collect(s.GenerateSnippets("   \n\t  "))
	assert.Empty(t, snippets)
}

func TestSimpleSnipper_Restartable(t *testing.T) {
	content := words(120)
	s := NewSimpleSnipper(50)

	seq := s.GenerateSnippets(content)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)
}

func TestSimpleSnipper_DefaultLength(t *testing.T) {
	s := NewSimpleSnipper(0)
	snippets := slices.Collect(s.GenerateSnippets(words(DefaultSnippetLength + 1)))
	assert.Len(t, snippets, 2)
}
