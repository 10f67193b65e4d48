package adapter_bubbletea

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/ionut-t/yankhighlight/adapter-bubbletea/decoration"
	"github.com/ionut-t/yankhighlight/adapter-bubbletea/highlighter"
	"github.com/ionut-t/yankhighlight/core"
)

// VisualLineInfo is one screen row of a wrapped buffer line.
type VisualLineInfo struct {
	Content         string
	LogicalRow      int
	LogicalStartCol int
	IsFirstSegment  bool
	IsLastSegment   bool
}

// lineNumberWidth is the gutter width, including the space after the number.
func (m *Model) lineNumberWidth(totalLines int) int {
	if !m.showLineNumbers {
		return 0
	}

	maxWidth := len(strconv.Itoa(max(1, totalLines)))
	return min(max(4, maxWidth)+1, 10)
}

// runeWidth is the number of cells r takes. Tabs are drawn as one space.
func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	return uniseg.StringWidth(string(r))
}

func displayWidth(runes []rune) int {
	w := 0
	for _, r := range runes {
		w += runeWidth(r)
	}
	return w
}

// wrapLine splits line into segments of at most width cells, breaking after the
// last space that fits. Trailing spaces may hang past width. The segments
// joined together give back line.
func wrapLine(line string, width int) []string {
	if width <= 0 || line == "" {
		return []string{line}
	}

	runes := []rune(line)
	var segments []string
	start, used, lastSpace := 0, 0, -1

	for i, r := range runes {
		w := runeWidth(r)
		if used+w > width && i > start && !unicode.IsSpace(r) {
			end := i
			if lastSpace >= start {
				end = lastSpace + 1
			}
			segments = append(segments, string(runes[start:end]))
			used = displayWidth(runes[end:i])
			start = end
			lastSpace = -1
		}
		used += w
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}

	return append(segments, string(runes[start:]))
}

// calculateVisualMetrics wraps every buffer line and finds the screen row of
// the cursor.
func (m *Model) calculateVisualMetrics() {
	buffer := m.editor.GetBuffer()
	lines := buffer.GetLines()
	cursor := buffer.GetCursor().Position

	available := max(1, m.viewport.Width-m.lineNumberWidth(len(lines)))
	if state := m.editor.GetState(); state.AvailableWidth != available {
		state.AvailableWidth = available
		m.editor.SetState(state)
	}

	layout := make([]VisualLineInfo, 0, len(lines))
	m.cursorVisualRow = 0

	for row, line := range lines {
		segments := wrapLine(line, available)
		start := 0
		for i, segment := range segments {
			n := utf8.RuneCountInString(segment)
			last := i == len(segments)-1

			if row == cursor.Row && cursor.Col >= start && (cursor.Col < start+n || last) {
				m.cursorVisualRow = len(layout)
			}

			layout = append(layout, VisualLineInfo{
				Content:         segment,
				LogicalRow:      row,
				LogicalStartCol: start,
				IsFirstSegment:  i == 0,
				IsLastSegment:   last,
			})
			start += n
		}
	}

	m.visualLayout = layout
}

// updateVisualTopLine scrolls so the cursor row is visible.
func (m *Model) updateVisualTopLine() {
	height := m.viewport.Height

	if m.cursorVisualRow < m.visualTopLine {
		m.visualTopLine = m.cursorVisualRow
	} else if m.cursorVisualRow >= m.visualTopLine+height {
		m.visualTopLine = m.cursorVisualRow - height + 1
	}

	m.visualTopLine = max(0, min(m.visualTopLine, len(m.visualLayout)-height))
	m.viewport.YOffset = 0
}

func (m *Model) cursorStyle() lipgloss.Style {
	switch m.editor.GetState().Mode {
	case core.InsertMode:
		return m.theme.InsertModeStyle
	case core.VisualMode, core.VisualLineMode:
		return m.theme.VisualModeStyle
	case core.CommandMode:
		return m.theme.CommandModeStyle
	default:
		return m.theme.NormalModeStyle
	}
}

func (m *Model) showCursor() bool {
	return m.isFocused && m.cursorVisible
}

// yankRange returns the buffer range covered by the view's yank decoration.
func (m *Model) yankRange(lines []string, cursor core.Position) (start, end core.Position, ok bool) {
	if m.decorations == nil {
		return start, end, false
	}
	return m.decorations.Range(m.id, lines, cursor)
}

// charStyle layers the styles of the rune at pos: syntax colour, then the
// visual selection, then the yank highlight.
func (m *Model) charStyle(pos core.Position, tokens []highlighter.TokenPosition, yank func(core.Position) bool) lipgloss.Style {
	style := lipgloss.NewStyle()
	if m.highlighter != nil {
		style = m.highlighter.StyleAt(tokens, pos.Col)
	}

	if m.editor.GetSelectionStatus(pos) != core.SelectionNone {
		style = style.Background(m.theme.SelectionStyle.GetBackground())
	}

	if yank(pos) {
		style = m.theme.HighlightYankStyle
	}

	return style
}

func (m *Model) renderLineNumber(vli VisualLineInfo, cursorRow, width int, relative bool) string {
	style := m.theme.LineNumberStyle
	number := ""

	if vli.IsFirstSegment {
		number = strconv.Itoa(vli.LogicalRow + 1)
		if relative && !m.disableVimMode && vli.LogicalRow != cursorRow {
			number = strconv.Itoa(abs(vli.LogicalRow - cursorRow))
		}
		if vli.LogicalRow == cursorRow {
			style = m.theme.CurrentLineNumberStyle
		}
	}

	return style.Width(width-1).Render(number) + " "
}

// renderVisibleSlice renders the rows of visualLayout that fit the viewport.
func (m *Model) renderVisibleSlice() {
	if m.placeholder != "" && m.IsEmpty() {
		m.viewport.SetContent(m.renderPlaceholder())
		return
	}

	buffer := m.editor.GetBuffer()
	lines := buffer.GetLines()
	cursor := buffer.GetCursor().Position
	state := m.editor.GetState()
	gutter := m.lineNumberWidth(len(lines))

	yankStart, yankEnd, yanked := m.yankRange(lines, cursor)
	inYank := func(pos core.Position) bool {
		return yanked && decoration.Contains(yankStart, yankEnd, pos)
	}

	if m.highlighter != nil {
		m.highlighter.Tokenise(lines)
	}

	var b strings.Builder
	rendered := 0

	top := min(m.visualTopLine, len(m.visualLayout))
	end := min(top+m.viewport.Height, len(m.visualLayout))
	for _, vli := range m.visualLayout[top:end] {
		if m.showLineNumbers {
			b.WriteString(m.renderLineNumber(vli, cursor.Row, gutter, state.RelativeNumbers))
		}

		var tokens []highlighter.TokenPosition
		if m.highlighter != nil {
			tokens = m.highlighter.Line(vli.LogicalRow)
		}

		col := vli.LogicalStartCol
		for _, r := range vli.Content {
			pos := core.Position{Row: vli.LogicalRow, Col: col}
			ch := string(r)
			if r == '\t' {
				ch = " "
			}

			if pos == cursor && m.showCursor() {
				b.WriteString(m.cursorStyle().Render(ch))
			} else {
				b.WriteString(m.charStyle(pos, tokens, inYank).Render(ch))
			}
			col++
		}

		// A cursor past the last rune (insert mode, empty lines) gets a block.
		if vli.IsLastSegment && vli.LogicalRow == cursor.Row && cursor.Col >= col && m.showCursor() {
			b.WriteString(m.cursorStyle().Render(" "))
		}

		b.WriteString("\n")
		rendered++
	}

	for ; rendered < m.viewport.Height; rendered++ {
		if m.showLineNumbers && m.showTildeIndicator {
			b.WriteString(m.theme.LineNumberStyle.Width(gutter-1).Render("~") + " ")
		}
		b.WriteString("\n")
	}

	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

func (m *Model) renderPlaceholder() string {
	var b strings.Builder

	if m.showLineNumbers {
		b.WriteString(m.theme.CurrentLineNumberStyle.Width(m.lineNumberWidth(1)-1).Render("1") + " ")
	}

	for i, r := range m.placeholder {
		if i == 0 && m.showCursor() {
			b.WriteString(m.cursorStyle().Foreground(m.theme.PlaceholderStyle.GetForeground()).Render(string(r)))
			continue
		}
		b.WriteString(m.theme.PlaceholderStyle.Render(string(r)))
	}

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
