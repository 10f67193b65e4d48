package highlighter

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenisePositions(t *testing.T) {
	h := New("go", "monokai")
	lines := []string{"package main", "", "var x = 1"}

	h.Tokenise(lines)

	for row, line := range lines {
		spans := h.Line(row)
		got := ""
		col := 0
		for _, p := range spans {
			assert.Equal(t, col, p.StartCol, "spans are contiguous")
			got += p.Token.Value
			col = p.EndCol
		}
		assert.Equal(t, line, got, "line %d", row)
	}

	token, ok := FindTokenAtPosition(h.Line(0), 2)
	require.True(t, ok)
	assert.Equal(t, chroma.KeywordNamespace, token.Type)
}

func TestTokeniseMultilineTokens(t *testing.T) {
	h := New("markdown", "monokai")
	lines := []string{"# Title", "```go", "x := 1", "```"}

	h.Tokenise(lines)

	for row, line := range lines {
		got := ""
		for _, p := range h.Line(row) {
			got += p.Token.Value
		}
		assert.Equal(t, line, got)
	}
}

func TestTokeniseOnlyWhenInvalidated(t *testing.T) {
	h := New("go", "monokai")

	h.Tokenise([]string{"var a = 1"})
	first := h.Line(0)

	h.Tokenise([]string{"func main() {}"})
	assert.Equal(t, first, h.Line(0), "cache is kept until invalidated")

	h.Invalidate()
	h.Tokenise([]string{"func main() {}"})
	assert.NotEqual(t, first, h.Line(0))
}

func TestFindTokenAtPosition(t *testing.T) {
	positions := []TokenPosition{
		{Token: chroma.Token{Type: chroma.Keyword, Value: "var"}, StartCol: 0, EndCol: 3},
		{Token: chroma.Token{Type: chroma.Text, Value: " "}, StartCol: 3, EndCol: 4},
		{Token: chroma.Token{Type: chroma.Name, Value: "x"}, StartCol: 4, EndCol: 5},
	}

	tests := []struct {
		col  int
		want chroma.TokenType
		ok   bool
	}{
		{0, chroma.Keyword, true},
		{2, chroma.Keyword, true},
		{3, chroma.Text, true},
		{4, chroma.Name, true},
		{5, 0, false},
		{-1, 0, false},
	}

	for _, tt := range tests {
		token, ok := FindTokenAtPosition(positions, tt.col)
		assert.Equal(t, tt.ok, ok, "col %d", tt.col)
		if ok {
			assert.Equal(t, tt.want, token.Type)
		}
	}
}

func TestUnknownLanguageFallsBack(t *testing.T) {
	h := New("no-such-language", "no-such-theme")

	h.Tokenise([]string{"plain text"})

	assert.NotEmpty(t, h.Line(0))
	assert.NotPanics(t, func() { h.StyleAt(h.Line(0), 0) })
}
