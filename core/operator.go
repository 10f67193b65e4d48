package core

import (
	"fmt"
	"strings"
)

// textRange is the span an operator acts on. End is exclusive for character
// ranges. Linewise ranges cover the rows Start.Row through End.Row.
type textRange struct {
	Start    Position
	End      Position
	Linewise bool
}

func (r textRange) extract(buffer Buffer) string {
	if !r.Linewise {
		return buffer.TextRange(r.Start, r.End)
	}
	lines := buffer.GetLines()[r.Start.Row : r.End.Row+1]
	return strings.Join(lines, "\n") + "\n"
}

func (r textRange) lines() int {
	return r.End.Row - r.Start.Row + 1
}

var operatorCommands = map[Operator]string{
	OperatorYank:   CommandYank,
	OperatorDelete: CommandDelete,
	OperatorChange: CommandChange,
}

func operatorFor(r rune) (Operator, bool) {
	switch r {
	case 'y':
		return OperatorYank, true
	case 'd':
		return OperatorDelete, true
	case 'c':
		return OperatorChange, true
	}
	return "", false
}

// operatorRange computes what op covers when applied over a motion from the
// cursor. ok is false when the motion could not move.
func operatorRange(buffer Buffer, op Operator, name string, mt motion, count int) (textRange, bool) {
	cur := buffer.GetCursor()

	move := mt.move
	if mt.operand != nil {
		move = mt.operand
	}
	inclusive := mt.inclusive

	// "cw" on a word changes to the end of the word, like "ce".
	if op == OperatorChange && name == "w" && classAt(buffer, cur.Position) != classSpace {
		if end := wordEndOnLine(buffer, cur.Position, count); end != nil {
			return textRange{Start: cur.Position, End: Position{end.Row, end.Col + 1}}, true
		}
	}

	target, err := move(buffer, cur, count)
	if err != nil {
		// "w" on the last word still reaches the end of the buffer.
		if !(name == "w" && isBoundary(err)) {
			return textRange{}, false
		}
		target.Position = Position{cur.Position.Row, buffer.LineRuneCount(cur.Position.Row)}
	}

	start, end := NormalizeSelection(cur.Position, target.Position)

	if mt.linewise {
		return textRange{Start: Position{start.Row, 0}, End: Position{end.Row, 0}, Linewise: true}, true
	}

	switch {
	case inclusive:
		end.Col = min(end.Col+1, buffer.LineRuneCount(end.Row))
	case name == "w" && count <= 1 && end.Row > start.Row && start.Col < buffer.LineRuneCount(start.Row):
		// A single word motion never carries the operator onto the next line.
		end = Position{start.Row, buffer.LineRuneCount(start.Row)}
	case end.Col == 0 && end.Row > start.Row:
		// An exclusive motion ending at the start of a line stops at the end of
		// the previous one.
		end = Position{end.Row - 1, buffer.LineRuneCount(end.Row - 1)}
	}

	if start == end {
		return textRange{}, false
	}

	return textRange{Start: start, End: end}, true
}

// wordEndOnLine returns the end of the count-th word from p, or nil when it
// would leave the line.
func wordEndOnLine(buffer Buffer, p Position, count int) *Position {
	c := Cursor{Position: p}
	if p.Col+1 < buffer.LineRuneCount(p.Row) && classAt(buffer, Position{p.Row, p.Col + 1}) != classAt(buffer, p) {
		// Already on the last character of a word.
		if count <= 1 {
			return &p
		}
		count--
	}
	end, err := moveWordEnd(buffer, c, count)
	if err != nil || end.Position.Row != p.Row {
		return nil
	}
	return &end.Position
}

// applyOperator runs op over r and stores the affected text. The key being
// handled finishes the command even when the operation fails.
func applyOperator(editor Editor, buffer Buffer, op Operator, r textRange) *Error {
	editor.FinishCommand(operatorCommands[op])

	text := r.extract(buffer)
	cursor := buffer.GetCursor()

	if err := editor.StoreText(op, text, r.Linewise); err != nil {
		return err
	}

	switch op {
	case OperatorYank:
		if r.Linewise {
			cursor.Position.Row = r.Start.Row
			cursor.Position.Col = min(cursor.Position.Col, lastCol(buffer, r.Start.Row))
		} else {
			cursor = horizontal(cursor, r.Start.Col)
			cursor.Position.Row = r.Start.Row
		}
		buffer.SetCursor(cursor)
		if n := r.lines(); n > 2 {
			editor.DispatchMessage(YankMessage, linesMessage(n, "yanked"))
		}

	case OperatorDelete:
		if err := removeRange(buffer, r); err != nil {
			return err
		}
		if r.Linewise {
			row := min(r.Start.Row, buffer.LineCount()-1)
			cursor.Position.Row = row
			cursor = horizontal(cursor, firstNonBlank(buffer, row))
		} else {
			cursor = horizontal(cursor, min(r.Start.Col, lastCol(buffer, r.Start.Row)))
			cursor.Position.Row = r.Start.Row
		}
		buffer.SetCursor(cursor)
		editor.SaveHistory()
		if n := r.lines(); r.Linewise && n > 2 {
			editor.DispatchMessage(LinesDeletedMessage, linesMessage(n, "deleted"))
		}

	case OperatorChange:
		if r.Linewise {
			if _, err := buffer.DeleteLines(r.Start.Row, r.End.Row); err != nil {
				return err
			}
			if buffer.IsEmpty() {
				cursor.Position = Position{0, 0}
			} else {
				if err := buffer.InsertLines(r.Start.Row, []string{""}); err != nil {
					return err
				}
				cursor.Position = Position{r.Start.Row, 0}
			}
		} else {
			if err := buffer.DeleteRange(r.Start, r.End); err != nil {
				return err
			}
			cursor.Position = r.Start
		}
		buffer.SetCursor(horizontal(cursor, cursor.Position.Col))
		editor.SaveHistory()

	default:
		return newError(ErrInvalidCommandId, fmt.Errorf("%w: operator %q", ErrInvalidCommand, op))
	}

	if op == OperatorChange {
		editor.SetInsertMode()
	}

	return nil
}

func removeRange(buffer Buffer, r textRange) *Error {
	if r.Linewise {
		_, err := buffer.DeleteLines(r.Start.Row, r.End.Row)
		return err
	}
	return buffer.DeleteRange(r.Start, r.End)
}
