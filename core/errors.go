package core

import (
	"errors"
	"log/slog"
)

var (
	ErrEndOfBuffer        = errors.New("end of buffer")
	ErrStartOfBuffer      = errors.New("start of buffer")
	ErrEndOfLine          = errors.New("end of line")
	ErrStartOfLine        = errors.New("start of line")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrInvalidMotion      = errors.New("invalid motion")
	ErrInvalidRegister    = errors.New("invalid register")
	ErrEmptyRegister      = errors.New("register is empty")
	ErrNoChangesToSave    = errors.New("no changes to save")
	ErrUnsavedChanges     = errors.New("unsaved changes (use q! to override)")
	ErrClipboardNotSet    = errors.New("clipboard handler not set")
	ErrOldestChange       = errors.New("already at oldest change")
	ErrNewestChange       = errors.New("already at newest change")
	ErrInvalidOptionValue = errors.New("invalid option value")
)

type ErrorId int

const (
	ErrEndOfBufferId ErrorId = iota
	ErrStartOfBufferId
	ErrEndOfLineId
	ErrStartOfLineId
	ErrInvalidPositionId
	ErrInvalidModeId
	ErrInvalidCommandId
	ErrInvalidMotionId
	ErrInvalidRegisterId
	ErrEmptyRegisterId
	ErrNoChangesToSaveId
	ErrFailedToSaveId
	ErrFailedToYankId
	ErrFailedToPasteId
	ErrUndoFailedId
	ErrRedoFailedId
	ErrCopyFailedId
)

// Error pairs an error with the id consumers use to react to it.
type Error struct {
	id  ErrorId
	err error
}

func newError(id ErrorId, err error) *Error {
	return &Error{id: id, err: err}
}

func (e *Error) ID() ErrorId { return e.id }

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

func (e *editor) DispatchError(id ErrorId, err error) {
	select {
	case e.updateSignal <- ErrorSignal{id, err}:
	default:
		e.logger.Warn("signal channel full, dropping error", "id", id, "err", err)
	}
}

// isBoundary reports whether err only means a motion stopped at an edge of the buffer.
func isBoundary(err error) bool {
	return errors.Is(err, ErrEndOfBuffer) ||
		errors.Is(err, ErrStartOfBuffer) ||
		errors.Is(err, ErrEndOfLine) ||
		errors.Is(err, ErrStartOfLine)
}

var discardLogger = slog.New(slog.DiscardHandler)
