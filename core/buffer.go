package core

import (
	"fmt"
	"strings"
)

// Buffer represents the text content being edited
type Buffer interface {
	// Content access
	GetLines() []string              // Lines as strings (for saving/display)
	GetLineRunes(lineNum int) []rune // A single line as runes (for editing)
	LineRuneCount(lineNum int) int
	LineCount() int
	GetSavedContent() string
	GetCurrentContent() string

	// TextRange returns the text between start (inclusive) and end (exclusive).
	// Line breaks crossed by the range are included as "\n".
	TextRange(start, end Position) string

	// Modification
	InsertRunesAt(row, col int, runes []rune) *Error // Inserts runes, splitting lines on '\n'
	DeleteRange(start, end Position) *Error          // Deletes [start, end), joining lines
	DeleteRunesAt(row, col int, count int) *Error    // Deletes count runes, a line break counts as one
	InsertLines(row int, lines []string) *Error      // Inserts whole lines before row
	DeleteLines(from, to int) ([]string, *Error)     // Deletes lines [from, to] and returns them

	// Cursor
	GetCursor() Cursor
	SetCursor(Cursor)

	IsModified() bool
	SaveContent()
	SetContent(content []byte)
	IsEmpty() bool
}

type textBuffer struct {
	lines        [][]rune
	cursor       Cursor
	savedContent string
}

// NewBuffer creates a new empty buffer
func NewBuffer() Buffer {
	return &textBuffer{lines: [][]rune{{}}}
}

func NewBufferFromBytes(content []byte) Buffer {
	b := &textBuffer{}
	b.SetContent(content)
	b.SaveContent()
	return b
}

func (b *textBuffer) IsEmpty() bool {
	return len(b.lines) == 1 && len(b.lines[0]) == 0
}

// SetContent replaces the buffer content. A single trailing newline does not
// produce an extra empty line.
func (b *textBuffer) SetContent(content []byte) {
	text := strings.TrimSuffix(string(content), "\n")
	parts := strings.Split(text, "\n")

	b.lines = make([][]rune, len(parts))
	for i, p := range parts {
		b.lines[i] = []rune(p)
	}

	b.SetCursor(b.cursor)
}

func (b *textBuffer) GetLines() []string {
	lines := make([]string, len(b.lines))
	for i, r := range b.lines {
		lines[i] = string(r)
	}
	return lines
}

func (b *textBuffer) GetLineRunes(lineNum int) []rune {
	if lineNum < 0 || lineNum >= len(b.lines) {
		return nil
	}
	return b.lines[lineNum]
}

func (b *textBuffer) LineRuneCount(lineNum int) int {
	if lineNum < 0 || lineNum >= len(b.lines) {
		return 0
	}
	return len(b.lines[lineNum])
}

func (b *textBuffer) LineCount() int {
	return len(b.lines)
}

func (b *textBuffer) IsModified() bool {
	return b.savedContent != b.GetCurrentContent()
}

func (b *textBuffer) SaveContent() {
	b.savedContent = b.GetCurrentContent()
}

func (b *textBuffer) GetCurrentContent() string {
	return strings.Join(b.GetLines(), "\n")
}

func (b *textBuffer) GetSavedContent() string {
	return b.savedContent
}

func (b *textBuffer) GetCursor() Cursor {
	return b.cursor
}

// SetCursor sets the cursor position, clamping it to the buffer. The column may
// sit one past the last rune of a line.
func (b *textBuffer) SetCursor(cursor Cursor) {
	cursor.Position = b.clamp(cursor.Position)
	b.cursor = cursor
}

func (b *textBuffer) clamp(pos Position) Position {
	pos.Row = max(min(pos.Row, len(b.lines)-1), 0)
	pos.Col = max(min(pos.Col, b.LineRuneCount(pos.Row)), 0)
	return pos
}

func (b *textBuffer) validPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < len(b.lines) && pos.Col >= 0 && pos.Col <= len(b.lines[pos.Row])
}

func (b *textBuffer) TextRange(start, end Position) string {
	start, end = NormalizeSelection(b.clamp(start), b.clamp(end))

	if start.Row == end.Row {
		return string(b.lines[start.Row][start.Col:end.Col])
	}

	var sb strings.Builder
	sb.WriteString(string(b.lines[start.Row][start.Col:]))
	for r := start.Row + 1; r < end.Row; r++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[r]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[end.Row][:end.Col]))

	return sb.String()
}

func (b *textBuffer) InsertRunesAt(row, col int, runes []rune) *Error {
	if !b.validPosition(Position{row, col}) {
		return newError(ErrInvalidPositionId,
			fmt.Errorf("%w: %d:%d", ErrInvalidPosition, row, col))
	}

	line := b.lines[row]
	tail := append([]rune(nil), line[col:]...)
	parts := strings.Split(string(runes), "\n")

	head := append(line[:col:col], []rune(parts[0])...)
	if len(parts) == 1 {
		b.lines[row] = append(head, tail...)
		return nil
	}

	inserted := make([][]rune, 0, len(parts))
	inserted = append(inserted, head)
	for _, p := range parts[1 : len(parts)-1] {
		inserted = append(inserted, []rune(p))
	}
	inserted = append(inserted, append([]rune(parts[len(parts)-1]), tail...))

	lines := make([][]rune, 0, len(b.lines)+len(inserted)-1)
	lines = append(lines, b.lines[:row]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[row+1:]...)
	b.lines = lines

	return nil
}

func (b *textBuffer) DeleteRange(start, end Position) *Error {
	if !b.validPosition(start) || !b.validPosition(end) {
		return newError(ErrInvalidPositionId,
			fmt.Errorf("%w: %d:%d-%d:%d", ErrInvalidPosition, start.Row, start.Col, end.Row, end.Col))
	}
	start, end = NormalizeSelection(start, end)

	joined := append(b.lines[start.Row][:start.Col:start.Col], b.lines[end.Row][end.Col:]...)

	lines := make([][]rune, 0, len(b.lines)-(end.Row-start.Row))
	lines = append(lines, b.lines[:start.Row]...)
	lines = append(lines, joined)
	lines = append(lines, b.lines[end.Row+1:]...)
	b.lines = lines

	b.SetCursor(b.cursor)
	return nil
}

func (b *textBuffer) DeleteRunesAt(row, col int, count int) *Error {
	if count <= 0 {
		return nil
	}
	start := Position{row, col}
	if !b.validPosition(start) {
		return newError(ErrInvalidPositionId,
			fmt.Errorf("%w: %d:%d", ErrInvalidPosition, row, col))
	}

	return b.DeleteRange(start, b.advance(start, count))
}

// advance moves pos forward by n runes, counting each line break as one.
func (b *textBuffer) advance(pos Position, n int) Position {
	for n > 0 {
		rest := len(b.lines[pos.Row]) - pos.Col
		if n <= rest {
			pos.Col += n
			return pos
		}
		if pos.Row == len(b.lines)-1 {
			pos.Col = len(b.lines[pos.Row])
			return pos
		}
		n -= rest + 1
		pos = Position{Row: pos.Row + 1, Col: 0}
	}
	return pos
}

func (b *textBuffer) InsertLines(row int, lines []string) *Error {
	if row < 0 || row > len(b.lines) {
		return newError(ErrInvalidPositionId,
			fmt.Errorf("%w: row %d out of bounds [0, %d]", ErrInvalidPosition, row, len(b.lines)))
	}

	inserted := make([][]rune, len(lines))
	for i, l := range lines {
		inserted[i] = []rune(l)
	}

	out := make([][]rune, 0, len(b.lines)+len(inserted))
	out = append(out, b.lines[:row]...)
	out = append(out, inserted...)
	out = append(out, b.lines[row:]...)
	b.lines = out

	return nil
}

func (b *textBuffer) DeleteLines(from, to int) ([]string, *Error) {
	if from > to {
		from, to = to, from
	}
	if from < 0 || to >= len(b.lines) {
		return nil, newError(ErrInvalidPositionId,
			fmt.Errorf("%w: lines %d-%d out of bounds [0, %d)", ErrInvalidPosition, from, to, len(b.lines)))
	}

	removed := make([]string, 0, to-from+1)
	for _, l := range b.lines[from : to+1] {
		removed = append(removed, string(l))
	}

	b.lines = append(b.lines[:from:from], b.lines[to+1:]...)
	if len(b.lines) == 0 {
		b.lines = [][]rune{{}}
	}

	b.SetCursor(b.cursor)
	return removed, nil
}

// NormalizeSelection orders two positions, row first, then column.
func NormalizeSelection(p1, p2 Position) (start, end Position) {
	if p1.Row < p2.Row || (p1.Row == p2.Row && p1.Col <= p2.Col) {
		return p1, p2
	}
	return p2, p1
}
