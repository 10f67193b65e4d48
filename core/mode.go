package core

import (
	"fmt"
)

type Mode string

const (
	NormalMode     Mode = "normal"
	InsertMode     Mode = "insert"
	VisualMode     Mode = "visual"
	VisualLineMode Mode = "visual-line"
	CommandMode    Mode = "command"
)

// EditorMode represents a Vim editing mode
type EditorMode interface {
	Name() Mode
	// HandleKey processes a key press. Modes call Editor.FinishCommand when the key
	// completes a command.
	HandleKey(editor Editor, buffer Buffer, key KeyEvent) *Error
	Enter(editor Editor, buffer Buffer) // Called when entering the mode
	Exit(editor Editor, buffer Buffer)  // Called when exiting the mode
}

// emitsKeys reports whether keys handled in mode are vi keys (as opposed to text
// typed into the buffer or the command line).
func (m Mode) emitsKeys() bool {
	return m == NormalMode || m == VisualMode || m == VisualLineMode
}

func countOrOne(count *int) int {
	if count == nil || *count <= 0 {
		return 1
	}
	return *count
}

// accumulateCount appends a digit key to the pending count.
// It returns false when the key is not part of a count ('0' only counts once a
// count has started, otherwise it is a motion).
func accumulateCount(editor Editor, key KeyEvent) bool {
	if key.Modifiers&(ModCtrl|ModAlt) != 0 {
		return false
	}

	state := editor.GetState()
	switch {
	case key.Rune >= '1' && key.Rune <= '9':
	case key.Rune == '0' && state.PendingCount != nil:
	default:
		return false
	}

	digit := int(key.Rune - '0')
	count := digit
	if state.PendingCount != nil {
		count = *state.PendingCount*10 + digit
	}
	state.PendingCount = &count
	editor.SetState(state)
	editor.UpdateCommand(fmt.Sprintf("%d", count))

	return true
}
