package core

import "log/slog"

// Position represents a specific location in the text buffer
type Position struct {
	Row int // Zero-indexed row (line number)
	Col int // Zero-indexed column (character position in the line)
}

// SelectionType indicates the selection status of a position
type SelectionType int

const (
	SelectionNone      SelectionType = iota // Position is not selected
	SelectionCharacter                      // Position is part of a character-wise visual selection
	SelectionLine                           // Position is part of a line-wise visual selection
)

// Editor represents the main editor interface
type Editor interface {
	// Buffer manipulation
	GetBuffer() Buffer
	SetBuffer(Buffer)
	SetContent([]byte)

	// Mode handling
	GetMode() EditorMode
	SetNormalMode()
	SetInsertMode()
	SetVisualMode()
	SetVisualLineMode()
	SetCommandMode()
	DisableVimMode(bool)
	IsVimMode() bool

	// Event handling
	HandleKey(key KeyEvent) *Error
	Events() *Emitter
	FinishCommand(name string)

	// State Management
	GetState() State
	SetState(State)
	UpdateStatus(string)
	UpdateCommand(string)
	ResetPendingCount()
	SetPendingRegister(name rune)
	ResetPendingRegister()

	// Command execution (Called from Command Mode)
	ExecuteCommand(cmd string) error

	// History management
	SaveHistory()
	Undo() error
	Redo() error

	// Registers
	Registers() *RegisterController
	StoreText(op Operator, text string, linewise bool) *Error
	Put(before bool) (string, *Error)

	ScrollViewport()
	GetUpdateSignalChan() <-chan Signal
	GetSelectionStatus(pos Position) SelectionType
	Save()
	Quit()
	DispatchError(id ErrorId, err error)
	DispatchMessage(args ...string)
	DispatchSignal(signal Signal)

	ShowRelativeLineNumbers(bool)
	SetMaxHistory(max uint32)
	IsNormalMode() bool
	IsInsertMode() bool
	IsVisualMode() bool
	IsVisualLineMode() bool
	IsCommandMode() bool
}

type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}

// Option configures an editor created with New.
type Option func(*editor)

// WithRegisters shares an existing register controller with the editor.
// Editors created without it get a private one.
func WithRegisters(rc *RegisterController) Option {
	return func(e *editor) {
		e.registers = rc
	}
}

// WithEmitter sets the emitter key and command events are published on.
func WithEmitter(em *Emitter) Option {
	return func(e *editor) {
		e.events = em
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *editor) {
		e.logger = logger
	}
}
