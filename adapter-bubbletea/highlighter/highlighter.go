package highlighter

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter colours note content with a chroma lexer and style.
type Highlighter struct {
	language   string
	lexer      chroma.Lexer
	style      *chroma.Style
	mu         sync.RWMutex
	dirty      bool
	lines      map[int][]TokenPosition // token spans by line number
	styleCache map[chroma.TokenType]lipgloss.Style
}

// TokenPosition is a token and the rune columns [StartCol, EndCol) it covers
// in its line.
type TokenPosition struct {
	Token    chroma.Token
	StartCol int
	EndCol   int
}

// New returns a highlighter for language. Unknown languages fall back to plain
// text and unknown themes to chroma's default style.
func New(language string, theme string) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	return &Highlighter{
		language:   language,
		lexer:      chroma.Coalesce(lexer),
		style:      styles.Get(theme),
		dirty:      true,
		lines:      make(map[int][]TokenPosition),
		styleCache: make(map[chroma.TokenType]lipgloss.Style),
	}
}

func (h *Highlighter) Language() string {
	return h.language
}

// Invalidate marks the cached tokens as stale. The next Tokenise call lexes the
// content again.
func (h *Highlighter) Invalidate() {
	h.mu.Lock()
	h.dirty = true
	h.mu.Unlock()
}

// Tokenise lexes lines when the cache is stale. Whole documents are lexed at
// once because markdown fences span lines.
func (h *Highlighter) Tokenise(lines []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty {
		return
	}
	h.dirty = false
	clear(h.lines)

	content := strings.Join(lines, "\n")
	if content == "" {
		return
	}

	iterator, err := h.lexer.Tokenise(nil, content)
	if err != nil {
		return
	}

	row, col := 0, 0
	add := func(t chroma.TokenType, value string) {
		n := len([]rune(value))
		h.lines[row] = append(h.lines[row], TokenPosition{
			Token:    chroma.Token{Type: t, Value: value},
			StartCol: col,
			EndCol:   col + n,
		})
		col += n
	}

	for _, token := range iterator.Tokens() {
		value := token.Value
		for {
			before, after, found := strings.Cut(value, "\n")
			if before != "" {
				add(token.Type, before)
			}
			if !found {
				break
			}
			row++
			col = 0
			value = after
		}
	}
}

// Line returns the token spans of line row.
func (h *Highlighter) Line(row int) []TokenPosition {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lines[row]
}

// StyleAt returns the style of the token covering col, or a plain style.
func (h *Highlighter) StyleAt(positions []TokenPosition, col int) lipgloss.Style {
	if token, ok := FindTokenAtPosition(positions, col); ok {
		return h.GetStyleForToken(token.Type)
	}
	return lipgloss.NewStyle()
}

// GetStyleForToken converts a chroma token type to a lipgloss style.
func (h *Highlighter) GetStyleForToken(tokenType chroma.TokenType) lipgloss.Style {
	h.mu.Lock()
	defer h.mu.Unlock()

	if style, ok := h.styleCache[tokenType]; ok {
		return style
	}

	entry := h.style.Get(tokenType)

	style := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	h.styleCache[tokenType] = style

	return style
}

// FindTokenAtPosition finds the token covering col.
func FindTokenAtPosition(positions []TokenPosition, col int) (chroma.Token, bool) {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := (lo + hi) / 2
		switch p := positions[mid]; {
		case col < p.StartCol:
			hi = mid
		case col >= p.EndCol:
			lo = mid + 1
		default:
			return p.Token, true
		}
	}
	return chroma.Token{}, false
}
