package core

import (
	"fmt"
	"strings"
)

type normalMode struct {
	// pending holds the keys of an unfinished command ("d", "y2", "g", "dg").
	pending          string
	awaitingRegister bool
}

func NewNormalMode() EditorMode {
	return &normalMode{}
}

func (m *normalMode) Name() Mode { return NormalMode }

func (m *normalMode) Enter(editor Editor, buffer Buffer) {
	editor.UpdateStatus("-- NORMAL --")
	editor.UpdateCommand("")
	m.reset(editor)

	state := editor.GetState()
	state.VisualStart = Position{-1, -1}
	editor.SetState(state)

	cursor := buffer.GetCursor()
	cursor.Position.Col = min(cursor.Position.Col, lastCol(buffer, cursor.Position.Row))
	buffer.SetCursor(cursor)
}

func (m *normalMode) Exit(editor Editor, buffer Buffer) {
	m.pending = ""
	m.awaitingRegister = false
}

func (m *normalMode) reset(editor Editor) {
	m.pending = ""
	m.awaitingRegister = false
	editor.ResetPendingCount()
	editor.ResetPendingRegister()
	editor.UpdateCommand("")
}

// fail ends the key sequence without running anything.
func (m *normalMode) fail(editor Editor, err *Error) *Error {
	m.reset(editor)
	editor.FinishCommand(CommandInvalid)
	return err
}

func (m *normalMode) HandleKey(editor Editor, buffer Buffer, key KeyEvent) *Error {
	if key.Key == KeyEscape {
		m.reset(editor)
		editor.FinishCommand(CommandCancel)
		return nil
	}

	if m.awaitingRegister {
		m.awaitingRegister = false
		if key.Modifiers&(ModCtrl|ModAlt) != 0 || !IsValidRegister(key.Rune) {
			return m.fail(editor, newError(ErrInvalidRegisterId,
				fmt.Errorf("%w: %s", ErrInvalidRegister, key.Symbol())))
		}
		editor.SetPendingRegister(key.Rune)
		editor.UpdateCommand(fmt.Sprintf("\"%c", key.Rune))
		return nil
	}

	if accumulateCount(editor, key) {
		return nil
	}

	symbol := key.Symbol()
	state := editor.GetState()
	count := 0
	if state.PendingCount != nil {
		count = *state.PendingCount
	}

	if m.pending != "" {
		return m.handlePending(editor, buffer, symbol, count)
	}

	switch symbol {
	case "\"":
		m.awaitingRegister = true
		editor.UpdateCommand("\"")
		return nil

	case "d", "y", "c", "g":
		m.pending = symbol
		editor.UpdateCommand(state.CommandLine + symbol)
		return nil
	}

	if mt, ok := motions[symbol]; ok {
		return m.runMotion(editor, buffer, mt, count)
	}

	m.pending = ""
	editor.ResetPendingCount()
	editor.UpdateCommand("")

	err := m.runCommand(editor, buffer, symbol, count)
	editor.ResetPendingRegister()
	return err
}

func (m *normalMode) handlePending(editor Editor, buffer Buffer, symbol string, count int) *Error {
	pending := m.pending

	if pending == "g" {
		if symbol != "g" {
			return m.fail(editor, nil)
		}
		return m.runMotion(editor, buffer, motions["gg"], count)
	}

	op, _ := operatorFor(rune(pending[0]))

	// "dd", "yy", "cc": whole lines.
	if symbol == pending {
		row := buffer.GetCursor().Position.Row
		end := min(row+countOrOne(&count)-1, buffer.LineCount()-1)
		r := textRange{Start: Position{row, 0}, End: Position{end, 0}, Linewise: true}
		return m.operate(editor, buffer, op, r)
	}

	name := symbol
	if strings.HasSuffix(pending, "g") {
		name = "g" + symbol
	} else if symbol == "g" {
		m.pending += "g"
		editor.UpdateCommand(editor.GetState().CommandLine + symbol)
		return nil
	}

	mt, ok := motions[name]
	if !ok {
		return m.fail(editor, newError(ErrInvalidMotionId,
			fmt.Errorf("%w: %s after %s", ErrInvalidMotion, symbol, pending)))
	}

	r, ok := operatorRange(buffer, op, name, mt, count)
	if !ok {
		return m.fail(editor, nil)
	}

	return m.operate(editor, buffer, op, r)
}

func (m *normalMode) operate(editor Editor, buffer Buffer, op Operator, r textRange) *Error {
	m.pending = ""
	editor.ResetPendingCount()
	editor.UpdateCommand("")

	if err := applyOperator(editor, buffer, op, r); err != nil {
		return m.fail(editor, err)
	}
	// The register prefix is consumed by StoreText.
	return nil
}

func (m *normalMode) runMotion(editor Editor, buffer Buffer, mt motion, count int) *Error {
	m.reset(editor)

	cursor, err := mt.move(buffer, buffer.GetCursor(), count)
	if err != nil && !isBoundary(err) {
		editor.FinishCommand(CommandInvalid)
		return newError(ErrInvalidMotionId, err)
	}

	cursor.Position.Col = min(cursor.Position.Col, lastCol(buffer, cursor.Position.Row))
	buffer.SetCursor(cursor)
	editor.FinishCommand(CommandMotion)

	return nil
}

func (m *normalMode) runCommand(editor Editor, buffer Buffer, symbol string, count int) *Error {
	cursor := buffer.GetCursor()
	row, col := cursor.Position.Row, cursor.Position.Col
	n := countOrOne(&count)

	switch symbol {
	case "x", "<Del>":
		if buffer.LineRuneCount(row) == 0 {
			editor.FinishCommand(CommandDelete)
			return nil
		}
		end := min(col+n, buffer.LineRuneCount(row))
		return applyOperator(editor, buffer, OperatorDelete, textRange{Start: cursor.Position, End: Position{row, end}})

	case "X":
		if col == 0 {
			editor.FinishCommand(CommandDelete)
			return nil
		}
		return applyOperator(editor, buffer, OperatorDelete, textRange{Start: Position{row, max(col-n, 0)}, End: cursor.Position})

	case "D", "C":
		op := OperatorDelete
		if symbol == "C" {
			op = OperatorChange
		}
		end := Position{min(row+n-1, buffer.LineCount()-1), 0}
		end.Col = buffer.LineRuneCount(end.Row)
		if end == cursor.Position {
			editor.FinishCommand(operatorCommands[op])
			if op == OperatorChange {
				editor.SetInsertMode()
			}
			return nil
		}
		return applyOperator(editor, buffer, op, textRange{Start: cursor.Position, End: end})

	case "Y":
		end := min(row+n-1, buffer.LineCount()-1)
		return applyOperator(editor, buffer, OperatorYank, textRange{Start: Position{row, 0}, End: Position{end, 0}, Linewise: true})

	case "p", "P":
		for range n {
			if _, err := editor.Put(symbol == "P"); err != nil {
				editor.FinishCommand(CommandPut)
				return err
			}
		}
		editor.FinishCommand(CommandPut)
		return nil

	case "u":
		for range n {
			if err := editor.Undo(); err != nil {
				editor.FinishCommand(CommandUndo)
				return errorOf(ErrUndoFailedId, err)
			}
		}
		editor.FinishCommand(CommandUndo)
		return nil

	case "<C-r>":
		for range n {
			if err := editor.Redo(); err != nil {
				editor.FinishCommand(CommandRedo)
				return errorOf(ErrRedoFailedId, err)
			}
		}
		editor.FinishCommand(CommandRedo)
		return nil

	case "i", "<Insert>":
	case "I":
		cursor = horizontal(cursor, firstNonBlank(buffer, row))
	case "a":
		cursor = horizontal(cursor, min(col+1, buffer.LineRuneCount(row)))
	case "A":
		cursor = horizontal(cursor, buffer.LineRuneCount(row))
	case "o", "O":
		at := row + 1
		if symbol == "O" {
			at = row
		}
		if err := buffer.InsertLines(at, []string{""}); err != nil {
			editor.FinishCommand(CommandInvalid)
			return err
		}
		cursor.Position = Position{at, 0}
		cursor = horizontal(cursor, 0)

	case "v":
		editor.SetVisualMode()
		editor.FinishCommand(CommandModeChange)
		return nil

	case "V":
		editor.SetVisualLineMode()
		editor.FinishCommand(CommandModeChange)
		return nil

	case ":":
		// The command completes when the command line is executed or abandoned.
		editor.SetCommandMode()
		return nil

	default:
		// Unmapped keys end whatever was being typed.
		editor.FinishCommand(CommandInvalid)
		return nil
	}

	// Insert commands
	buffer.SetCursor(cursor)
	editor.FinishCommand(CommandInsert)
	editor.SetInsertMode()

	return nil
}
