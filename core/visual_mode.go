package core

import (
	"fmt"
	"strings"
)

// visualMode implements both character-wise and line-wise selection.
type visualMode struct {
	linewise         bool
	pendingG         bool
	awaitingRegister bool
}

func NewVisualMode() EditorMode {
	return &visualMode{}
}

func (m *visualMode) Name() Mode {
	if m.linewise {
		return VisualLineMode
	}
	return VisualMode
}

func (m *visualMode) Enter(editor Editor, buffer Buffer) {
	if m.linewise {
		editor.UpdateStatus("-- VISUAL LINE --")
	} else {
		editor.UpdateStatus("-- VISUAL --")
	}
	editor.UpdateCommand("")
	m.pendingG = false
	m.awaitingRegister = false

	state := editor.GetState()
	if state.VisualStart.Row == -1 {
		state.VisualStart = buffer.GetCursor().Position
		editor.SetState(state)
	}
}

// Exit keeps the selection anchor, which lets v and V switch kinds in place.
// Entering normal or insert mode clears it.
func (m *visualMode) Exit(editor Editor, buffer Buffer) {
	editor.ResetPendingCount()
	editor.UpdateCommand("")
}

func clearSelection(editor Editor) {
	state := editor.GetState()
	state.VisualStart = Position{-1, -1}
	editor.SetState(state)
}

// selection returns the selected text range.
func (m *visualMode) selection(editor Editor, buffer Buffer) textRange {
	start, end := NormalizeSelection(editor.GetState().VisualStart, buffer.GetCursor().Position)

	if m.linewise {
		return textRange{Start: Position{start.Row, 0}, End: Position{end.Row, 0}, Linewise: true}
	}

	if end.Col >= buffer.LineRuneCount(end.Row) && end.Row < buffer.LineCount()-1 {
		// Selecting past the end of a line takes its line break.
		end = Position{end.Row + 1, 0}
	} else {
		end.Col = min(end.Col+1, buffer.LineRuneCount(end.Row))
	}

	return textRange{Start: start, End: end}
}

func (m *visualMode) HandleKey(editor Editor, buffer Buffer, key KeyEvent) *Error {
	if key.Key == KeyEscape {
		m.leave(editor, CommandModeChange)
		return nil
	}

	if m.awaitingRegister {
		m.awaitingRegister = false
		if key.Modifiers&(ModCtrl|ModAlt) != 0 || !IsValidRegister(key.Rune) {
			editor.FinishCommand(CommandInvalid)
			return newError(ErrInvalidRegisterId, fmt.Errorf("%w: %s", ErrInvalidRegister, key.Symbol()))
		}
		editor.SetPendingRegister(key.Rune)
		editor.UpdateCommand(fmt.Sprintf("\"%c", key.Rune))
		return nil
	}

	if accumulateCount(editor, key) {
		return nil
	}

	symbol := key.Symbol()
	count := 0
	if c := editor.GetState().PendingCount; c != nil {
		count = *c
	}

	if m.pendingG {
		m.pendingG = false
		if symbol != "g" {
			editor.ResetPendingCount()
			editor.FinishCommand(CommandInvalid)
			return nil
		}
		symbol = "gg"
	}

	if mt, ok := motions[symbol]; ok {
		editor.ResetPendingCount()
		cursor, err := mt.move(buffer, buffer.GetCursor(), count)
		if err != nil && !isBoundary(err) {
			editor.FinishCommand(CommandInvalid)
			return newError(ErrInvalidMotionId, err)
		}
		buffer.SetCursor(cursor)
		editor.FinishCommand(CommandMotion)
		return nil
	}

	editor.ResetPendingCount()

	switch symbol {
	case "g":
		m.pendingG = true
		editor.UpdateCommand("g")
		return nil

	case "\"":
		m.awaitingRegister = true
		editor.UpdateCommand("\"")
		return nil

	case "y", "Y":
		r := m.selection(editor, buffer)
		if symbol == "Y" {
			r.Linewise = true
		}
		if err := applyOperator(editor, buffer, OperatorYank, r); err != nil {
			return err
		}
		m.toNormal(editor)
		return nil

	case "d", "x", "<Del>", "D", "X":
		r := m.selection(editor, buffer)
		if symbol == "D" || symbol == "X" {
			r.Linewise = true
		}
		if err := applyOperator(editor, buffer, OperatorDelete, r); err != nil {
			return err
		}
		m.toNormal(editor)
		return nil

	case "c", "s":
		r := m.selection(editor, buffer)
		clearSelection(editor)
		return applyOperator(editor, buffer, OperatorChange, r)

	case "p", "P":
		return m.replace(editor, buffer)

	case "o":
		state := editor.GetState()
		cursor := buffer.GetCursor()
		state.VisualStart, cursor.Position = cursor.Position, state.VisualStart
		editor.SetState(state)
		buffer.SetCursor(horizontal(cursor, cursor.Position.Col))
		editor.FinishCommand(CommandMotion)
		return nil

	case "v":
		if !m.linewise {
			m.leave(editor, CommandModeChange)
			return nil
		}
		editor.SetVisualMode()
		editor.FinishCommand(CommandModeChange)
		return nil

	case "V":
		if m.linewise {
			m.leave(editor, CommandModeChange)
			return nil
		}
		editor.SetVisualLineMode()
		editor.FinishCommand(CommandModeChange)
		return nil

	case ":":
		clearSelection(editor)
		editor.SetCommandMode()
		return nil
	}

	editor.FinishCommand(CommandInvalid)
	return nil
}

func (m *visualMode) toNormal(editor Editor) {
	clearSelection(editor)
	editor.SetNormalMode()
}

func (m *visualMode) leave(editor Editor, name string) {
	editor.ResetPendingRegister()
	m.toNormal(editor)
	editor.FinishCommand(name)
}

// replace swaps the selection for the register content. The replaced text
// then goes to the registers like a delete.
func (m *visualMode) replace(editor Editor, buffer Buffer) *Error {
	state := editor.GetState()
	name := string(UnnamedRegister)
	if state.PendingRegister != 0 {
		name = string(state.PendingRegister)
	}
	reg := editor.Registers().GetRegister(name)
	text := reg.String()

	r := m.selection(editor, buffer)
	removed := r.extract(buffer)

	if err := removeRange(buffer, r); err != nil {
		return err
	}

	cursor := buffer.GetCursor()
	switch {
	case text == "":
	case reg.Linewise || r.Linewise:
		lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		at := r.Start.Row
		if !r.Linewise {
			// Line-wise text replacing characters goes on its own lines.
			if err := buffer.InsertRunesAt(r.Start.Row, r.Start.Col, []rune{'\n'}); err != nil {
				return err
			}
			at++
		}
		emptied := r.Linewise && buffer.IsEmpty()
		if err := buffer.InsertLines(at, lines); err != nil {
			return err
		}
		if emptied {
			// Drop the placeholder line left by deleting every line.
			last := buffer.LineCount() - 1
			if _, err := buffer.DeleteLines(last, last); err != nil {
				return err
			}
		}
		cursor.Position = Position{at, 0}
	default:
		if err := buffer.InsertRunesAt(r.Start.Row, r.Start.Col, []rune(text)); err != nil {
			return err
		}
		cursor.Position = r.Start
	}
	buffer.SetCursor(horizontal(cursor, cursor.Position.Col))

	editor.ResetPendingRegister()
	if err := editor.StoreText(OperatorDelete, removed, r.Linewise); err != nil {
		return err
	}

	editor.SaveHistory()
	m.toNormal(editor)
	editor.FinishCommand(CommandPut)

	return nil
}
