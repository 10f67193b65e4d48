package core

import "fmt"

var (
	EmptyMessage                   = ""
	ChangesSavedMessage            = "changes saved"
	RelativeNumbersEnabledMessage  = "relative line numbers enabled"
	RelativeNumbersDisabledMessage = "relative line numbers disabled"
	LinesDeletedMessage            = "lines deleted"
	YankMessage                    = "selection yanked"
)

func linesMessage(n int, what string) string {
	if n == 1 {
		return fmt.Sprintf("1 line %s", what)
	}
	return fmt.Sprintf("%d lines %s", n, what)
}

// DispatchMessage sends a message signal. With one argument the id doubles as
// the message text.
func (e *editor) DispatchMessage(args ...string) {
	if len(args) == 0 {
		return
	}
	id := args[0]
	value := id
	if len(args) > 1 {
		value = args[1]
	}
	select {
	case e.updateSignal <- MessageSignal{id, value}:
	default:
		e.logger.Warn("signal channel full, dropping message", "id", id)
	}
}
