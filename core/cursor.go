package core

import "unicode"

// Cursor represents the current position for editing operations
type Cursor struct {
	Position  Position // Current position (row, column)
	Preferred int      // Preferred column for vertical movement (sticky column)
}

// motion describes where a key moves the cursor and how an operator applied
// over that movement selects text.
type motion struct {
	// move returns the new cursor. count is 0 when no count was typed.
	move func(b Buffer, c Cursor, count int) (Cursor, error)
	// operand replaces move when the motion follows an operator.
	operand   func(b Buffer, c Cursor, count int) (Cursor, error)
	linewise  bool
	inclusive bool
}

var motions = map[string]motion{
	"h":       {move: moveLeft},
	"<Left>":  {move: moveLeft},
	"<BS>":    {move: moveLeft},
	"l":       {move: moveRight, operand: extendRight},
	"<Right>": {move: moveRight, operand: extendRight},
	"<Space>": {move: moveRight, operand: extendRight},
	"j":       {move: moveDown, linewise: true},
	"<Down>":  {move: moveDown, linewise: true},
	"k":       {move: moveUp, linewise: true},
	"<Up>":    {move: moveUp, linewise: true},
	"w":       {move: moveWordForward},
	"b":       {move: moveWordBackward},
	"e":       {move: moveWordEnd, inclusive: true},
	"0":       {move: moveLineStart},
	"<Home>":  {move: moveLineStart},
	"^":       {move: moveFirstNonBlank},
	"$":       {move: moveLineEnd, inclusive: true},
	"<End>":   {move: moveLineEnd, inclusive: true},
	"G":       {move: moveToLine(false), linewise: true},
	"gg":      {move: moveToLine(true), linewise: true},
}

// lastCol is the rightmost column the cursor may rest on outside insert mode.
func lastCol(b Buffer, row int) int {
	return max(b.LineRuneCount(row)-1, 0)
}

func horizontal(c Cursor, col int) Cursor {
	c.Position.Col = col
	c.Preferred = col
	return c
}

func vertical(b Buffer, c Cursor, row int) Cursor {
	c.Position.Row = row
	c.Position.Col = min(c.Preferred, lastCol(b, row))
	return c
}

func moveLeft(b Buffer, c Cursor, count int) (Cursor, error) {
	if c.Position.Col == 0 {
		return c, ErrStartOfLine
	}
	return horizontal(c, max(c.Position.Col-max(count, 1), 0)), nil
}

func moveRight(b Buffer, c Cursor, count int) (Cursor, error) {
	last := lastCol(b, c.Position.Row)
	if c.Position.Col >= last {
		return c, ErrEndOfLine
	}
	return horizontal(c, min(c.Position.Col+max(count, 1), last)), nil
}

// extendRight may reach one past the last rune so "yl" takes the last character.
func extendRight(b Buffer, c Cursor, count int) (Cursor, error) {
	end := b.LineRuneCount(c.Position.Row)
	if c.Position.Col >= end {
		return c, ErrEndOfLine
	}
	return horizontal(c, min(c.Position.Col+max(count, 1), end)), nil
}

func moveDown(b Buffer, c Cursor, count int) (Cursor, error) {
	last := b.LineCount() - 1
	if c.Position.Row >= last {
		return c, ErrEndOfBuffer
	}
	return vertical(b, c, min(c.Position.Row+max(count, 1), last)), nil
}

func moveUp(b Buffer, c Cursor, count int) (Cursor, error) {
	if c.Position.Row == 0 {
		return c, ErrStartOfBuffer
	}
	return vertical(b, c, max(c.Position.Row-max(count, 1), 0)), nil
}

func moveLineStart(b Buffer, c Cursor, _ int) (Cursor, error) {
	return horizontal(c, 0), nil
}

func moveLineEnd(b Buffer, c Cursor, count int) (Cursor, error) {
	if count > 1 {
		c.Position.Row = min(c.Position.Row+count-1, b.LineCount()-1)
	}
	c = horizontal(c, lastCol(b, c.Position.Row))
	c.Preferred = int(^uint(0) >> 1) // stick to the end of lines moved onto
	return c, nil
}

func firstNonBlank(b Buffer, row int) int {
	for i, r := range b.GetLineRunes(row) {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return lastCol(b, row)
}

func moveFirstNonBlank(b Buffer, c Cursor, _ int) (Cursor, error) {
	return horizontal(c, firstNonBlank(b, c.Position.Row)), nil
}

// moveToLine jumps to line count. Without a count gg goes to the first line
// and G to the last.
func moveToLine(first bool) func(Buffer, Cursor, int) (Cursor, error) {
	return func(b Buffer, c Cursor, count int) (Cursor, error) {
		row := b.LineCount() - 1
		switch {
		case count > 0:
			row = min(count-1, b.LineCount()-1)
		case first:
			row = 0
		}
		c.Position.Row = row
		return horizontal(c, firstNonBlank(b, row)), nil
	}
}

type charClass int

const (
	classSpace charClass = iota
	classPunct
	classWord
)

// classAt treats the column one past the end of a line as the line break.
func classAt(b Buffer, p Position) charClass {
	line := b.GetLineRunes(p.Row)
	if p.Col >= len(line) {
		return classSpace
	}
	r := line[p.Col]
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classPunct
	}
}

func emptyLine(b Buffer, p Position) bool {
	return p.Col == 0 && b.LineRuneCount(p.Row) == 0
}

func next(b Buffer, p Position) (Position, bool) {
	if p.Col < b.LineRuneCount(p.Row) {
		return Position{p.Row, p.Col + 1}, true
	}
	if p.Row < b.LineCount()-1 {
		return Position{p.Row + 1, 0}, true
	}
	return p, false
}

func prev(b Buffer, p Position) (Position, bool) {
	if p.Col > 0 {
		return Position{p.Row, p.Col - 1}, true
	}
	if p.Row > 0 {
		return Position{p.Row - 1, b.LineRuneCount(p.Row - 1)}, true
	}
	return p, false
}

func moveWordForward(b Buffer, c Cursor, count int) (Cursor, error) {
	p := c.Position
	for range max(count, 1) {
		cls := classAt(b, p)
		ok := true
		if emptyLine(b, p) {
			p, ok = next(b, p)
		} else if cls != classSpace {
			for ok && classAt(b, p) == cls {
				p, ok = next(b, p)
			}
		}
		for ok && classAt(b, p) == classSpace && !emptyLine(b, p) {
			p, ok = next(b, p)
		}
		if !ok {
			if p == c.Position {
				return c, ErrEndOfBuffer
			}
			break
		}
	}
	c.Position = p
	c.Preferred = p.Col
	return c, nil
}

func moveWordEnd(b Buffer, c Cursor, count int) (Cursor, error) {
	p := c.Position
	for range max(count, 1) {
		q, ok := next(b, p)
		for ok && classAt(b, q) == classSpace {
			q, ok = next(b, q)
		}
		if !ok {
			if p == c.Position {
				return c, ErrEndOfBuffer
			}
			break
		}
		cls := classAt(b, q)
		for {
			n, ok := next(b, q)
			if !ok || classAt(b, n) != cls {
				break
			}
			q = n
		}
		p = q
	}
	return horizontal(Cursor{Position: p}, p.Col), nil
}

func moveWordBackward(b Buffer, c Cursor, count int) (Cursor, error) {
	p := c.Position
	for range max(count, 1) {
		q, ok := prev(b, p)
		for ok && classAt(b, q) == classSpace && !emptyLine(b, q) {
			q, ok = prev(b, q)
		}
		if !ok {
			if p == c.Position {
				return c, ErrStartOfBuffer
			}
			break
		}
		if !emptyLine(b, q) {
			cls := classAt(b, q)
			for {
				n, ok := prev(b, q)
				if !ok || n.Row != q.Row || classAt(b, n) != cls {
					break
				}
				q = n
			}
		}
		p = q
	}
	return horizontal(Cursor{Position: p}, p.Col), nil
}
