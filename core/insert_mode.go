package core

type insertMode struct{}

func NewInsertMode() EditorMode { return &insertMode{} }

func (m *insertMode) Name() Mode { return InsertMode }

func (m *insertMode) Enter(editor Editor, buffer Buffer) {
	editor.UpdateStatus("-- INSERT --")
	editor.UpdateCommand("")
	// Save state for undo before the first insertion
	editor.SaveHistory()
}

// Exit records everything typed since Enter as one undo step.
func (m *insertMode) Exit(editor Editor, buffer Buffer) {
	editor.SaveHistory()
}

func (m *insertMode) HandleKey(editor Editor, buffer Buffer, key KeyEvent) *Error {
	cursor := buffer.GetCursor()
	row, col := cursor.Position.Row, cursor.Position.Col

	switch key.Key {
	case KeyEscape:
		if !editor.IsVimMode() {
			return nil
		}
		if col > 0 {
			buffer.SetCursor(horizontal(cursor, col-1))
		}
		editor.FinishCommand(CommandModeChange)
		editor.SetNormalMode()
		return nil

	case KeyBackspace:
		switch {
		case col > 0:
			if err := buffer.DeleteRunesAt(row, col-1, 1); err != nil {
				return err
			}
			buffer.SetCursor(horizontal(cursor, col-1))
		case row > 0:
			prevLen := buffer.LineRuneCount(row - 1)
			if err := buffer.DeleteRunesAt(row-1, prevLen, 1); err != nil {
				return err
			}
			cursor.Position.Row--
			buffer.SetCursor(horizontal(cursor, prevLen))
		default:
			return newError(ErrStartOfBufferId, ErrStartOfBuffer)
		}
		return nil

	case KeyDelete:
		if col < buffer.LineRuneCount(row) || row < buffer.LineCount()-1 {
			return buffer.DeleteRunesAt(row, col, 1)
		}
		return nil

	case KeyEnter:
		if err := buffer.InsertRunesAt(row, col, []rune{'\n'}); err != nil {
			return err
		}
		cursor.Position = Position{Row: row + 1}
		buffer.SetCursor(horizontal(cursor, 0))
		return nil

	case KeyTab:
		return m.insert(buffer, cursor, '\t')

	case KeySpace:
		return m.insert(buffer, cursor, ' ')

	case KeyLeft, KeyRight, KeyUp, KeyDown, KeyHome, KeyEnd:
		// Arrow keys in insert mode may rest one past the end of the line.
		if mt, ok := motions[key.Symbol()]; ok {
			move := mt.move
			if mt.operand != nil {
				move = mt.operand
			}
			next, err := move(buffer, cursor, 1)
			if err != nil && !isBoundary(err) {
				return newError(ErrInvalidMotionId, err)
			}
			if key.Key == KeyEnd {
				next = horizontal(next, buffer.LineRuneCount(next.Position.Row))
			}
			buffer.SetCursor(next)
		}
		return nil

	default:
		if key.Rune != 0 && key.Modifiers&(ModCtrl|ModAlt) == 0 {
			return m.insert(buffer, cursor, key.Rune)
		}
		return nil
	}
}

func (m *insertMode) insert(buffer Buffer, cursor Cursor, r rune) *Error {
	if err := buffer.InsertRunesAt(cursor.Position.Row, cursor.Position.Col, []rune{r}); err != nil {
		return err
	}
	buffer.SetCursor(horizontal(cursor, cursor.Position.Col+1))
	return nil
}
