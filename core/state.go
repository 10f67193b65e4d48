package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// State represents the complete current state of the editor
type State struct {
	Mode        Mode   // Current editing mode
	StatusLine  string // Content of the status line (bottom line)
	CommandLine string // Current command being typed or pending keys
	Quit        bool   // Flag indicating if the editor should exit

	// Viewport information
	TopLine        int // First line visible in the viewport (0-indexed)
	ViewportHeight int // Number of lines that can be displayed
	ViewportWidth  int // Number of columns that can be displayed
	AvailableWidth int // Width available for text rendering

	// Visual mode
	VisualStart Position // Starting position for visual selection (Position{-1,-1} if not active)

	// Command handling
	PendingCount    *int // Numeric prefix of the command being typed ("5j")
	PendingRegister rune // Register named with the '"' prefix, 0 if none

	RelativeNumbers bool
	VimMode         bool
}

// InitialState creates a default state
func InitialState() State {
	return State{
		Mode:           NormalMode,
		StatusLine:     "-- NORMAL --",
		ViewportHeight: 24,
		ViewportWidth:  80,
		VisualStart:    Position{-1, -1},
		VimMode:        true,
	}
}

type snapshot struct {
	content string
	cursor  Cursor
}

// Concrete implementation of Editor
type editor struct {
	buffer      Buffer
	currentMode EditorMode
	modes       map[Mode]EditorMode
	state       State

	history    []snapshot
	historyPos int
	maxHistory uint32

	registers    *RegisterController
	events       *Emitter
	updateSignal chan Signal
	logger       *slog.Logger

	// done is set by FinishCommand while a key is being handled.
	done *CommandDone
}

// New creates a new editor instance. The clipboard backs the '+' and '*'
// registers of the editor's own register controller.
func New(clipboard Clipboard, opts ...Option) Editor {
	e := &editor{
		buffer:       NewBuffer(),
		modes:        make(map[Mode]EditorMode),
		state:        InitialState(),
		historyPos:   -1,
		maxHistory:   1000,
		updateSignal: make(chan Signal, 100),
		logger:       discardLogger,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.registers == nil {
		e.registers = NewRegisterController(clipboard)
	}
	if e.events == nil {
		e.events = NewEmitter()
	}

	e.modes[NormalMode] = NewNormalMode()
	e.modes[InsertMode] = NewInsertMode()
	e.modes[VisualMode] = NewVisualMode()
	e.modes[VisualLineMode] = NewVisualLineMode()
	e.modes[CommandMode] = NewCommandMode()

	e.currentMode = e.modes[NormalMode]
	e.currentMode.Enter(e, e.buffer)

	e.SaveHistory()

	return e
}

// SetMaxHistory sets the maximum number of history entries. Default is 1000.
func (e *editor) SetMaxHistory(max uint32) {
	e.maxHistory = max
}

func (e *editor) DisableVimMode(disable bool) {
	e.state.VimMode = !disable
	if disable {
		e.SetInsertMode()
		e.ShowRelativeLineNumbers(false)
	} else {
		e.SetNormalMode()
	}
}

func (e *editor) IsVimMode() bool {
	return e.state.VimMode
}

func (e *editor) ShowRelativeLineNumbers(show bool) {
	e.state.RelativeNumbers = show
}

func (e *editor) setMode(modeName Mode) {
	newMode, ok := e.modes[modeName]
	if !ok {
		e.DispatchError(ErrInvalidModeId, fmt.Errorf("%w: %s", ErrInvalidMode, modeName))
		return
	}

	if e.currentMode != nil {
		e.currentMode.Exit(e, e.buffer)
	}

	e.currentMode = newMode
	e.state.Mode = modeName
	e.currentMode.Enter(e, e.buffer)
}

func (e *editor) SetNormalMode()     { e.setMode(NormalMode) }
func (e *editor) SetInsertMode()     { e.setMode(InsertMode) }
func (e *editor) SetVisualMode()     { e.setMode(VisualMode) }
func (e *editor) SetVisualLineMode() { e.setMode(VisualLineMode) }
func (e *editor) SetCommandMode()    { e.setMode(CommandMode) }

func (e *editor) GetBuffer() Buffer {
	return e.buffer
}

// SetBuffer replaces the buffer and resets history.
func (e *editor) SetBuffer(buffer Buffer) {
	e.buffer = buffer
	e.history = nil
	e.historyPos = -1
	e.SaveHistory()
	e.ScrollViewport()
}

func (e *editor) SetContent(content []byte) {
	e.SetBuffer(NewBufferFromBytes(content))
}

func (e *editor) GetMode() EditorMode {
	return e.currentMode
}

func (e *editor) GetUpdateSignalChan() <-chan Signal {
	return e.updateSignal
}

func (e *editor) Events() *Emitter {
	return e.events
}

func (e *editor) Registers() *RegisterController {
	return e.registers
}

// FinishCommand marks the key being handled as the last key of a command.
func (e *editor) FinishCommand(name string) {
	e.done = &CommandDone{Name: name}
}

// HandleKey runs key through the current mode and publishes it.
//
// Keys handled as vi keys emit EventKeypress. When the key completed a command,
// EventCommandDone is emitted first, then the key's EventKeypress. Text typed in
// insert mode or on the command line is not published unless it completes a
// command (leaving the mode).
func (e *editor) HandleKey(key KeyEvent) *Error {
	if e.currentMode == nil {
		return newError(ErrInvalidModeId, ErrInvalidMode)
	}

	mode := e.currentMode.Name()
	e.done = nil

	err := e.currentMode.HandleKey(e, e.buffer, key)

	e.ScrollViewport()

	done := e.done
	e.done = nil

	if e.state.VimMode && (mode.emitsKeys() || done != nil) {
		if done != nil {
			e.events.Emit(EventCommandDone, *done)
		}
		e.events.Emit(EventKeypress, key.Symbol())
	}

	return err
}

func (e *editor) GetState() State {
	return e.state
}

// SetState allows internal updates (e.g., from modes)
func (e *editor) SetState(state State) {
	e.state = state
}

func (e *editor) UpdateStatus(status string) {
	e.state.StatusLine = status
}

func (e *editor) UpdateCommand(cmd string) {
	e.state.CommandLine = cmd
}

func (e *editor) ResetPendingCount() {
	if e.state.PendingCount != nil {
		e.state.PendingCount = nil
		e.UpdateCommand("")
	}
}

func (e *editor) SetPendingRegister(name rune) {
	e.state.PendingRegister = name
}

func (e *editor) ResetPendingRegister() {
	e.state.PendingRegister = 0
}

// ExecuteCommand executes a command line entered in command mode.
func (e *editor) ExecuteCommand(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}

	parts := strings.Fields(cmd)
	command := parts[0]
	args := parts[1:]

	switch command {
	case "q", "quit":
		if e.buffer.IsModified() {
			return ErrUnsavedChanges
		}
		e.Quit()
		return nil

	case "q!", "quit!":
		e.Quit()
		return nil

	case "w", "write":
		if !e.buffer.IsModified() {
			return ErrNoChangesToSave
		}
		e.DispatchMessage(ChangesSavedMessage)
		e.Save()
		return nil

	case "wq", "x":
		if e.buffer.IsModified() {
			e.Save()
		}
		e.Quit()
		return nil

	case "set", "se":
		if len(args) != 1 {
			return fmt.Errorf("%w: set needs exactly one option", ErrInvalidCommand)
		}
		return e.setOption(args[0])

	default:
		lineNum, err := strconv.Atoi(command)
		if err != nil || lineNum <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidCommand, command)
		}
		cursor := e.buffer.GetCursor()
		cursor.Position.Row = min(lineNum-1, e.buffer.LineCount()-1)
		cursor = horizontal(cursor, firstNonBlank(e.buffer, cursor.Position.Row))
		e.buffer.SetCursor(cursor)
		e.ScrollViewport()
		return nil
	}
}

// setOption handles the editor's own options and forwards any other
// "name", "noname" or "name=value" option to the host as an OptionSignal.
func (e *editor) setOption(arg string) error {
	switch arg {
	case "relativenumber", "rnu":
		e.state.RelativeNumbers = true
		e.DispatchMessage(RelativeNumbersEnabledMessage)
		return nil
	case "norelativenumber", "nornu":
		e.state.RelativeNumbers = false
		e.DispatchMessage(RelativeNumbersDisabledMessage)
		return nil
	}

	name, value, hasValue := strings.Cut(arg, "=")
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidOptionValue, arg)
	}
	if !hasValue {
		value = "true"
		if trimmed, ok := strings.CutPrefix(name, "no"); ok && trimmed != "" {
			name, value = trimmed, "false"
		}
	}

	e.DispatchSignal(OptionSignal{name: name, value: value})
	return nil
}

// ScrollViewport ensures the cursor is within the visible area
func (e *editor) ScrollViewport() {
	row := e.buffer.GetCursor().Position.Row

	if row < e.state.TopLine {
		e.state.TopLine = row
	} else if row >= e.state.TopLine+e.state.ViewportHeight {
		e.state.TopLine = row - e.state.ViewportHeight + 1
	}

	e.state.TopLine = max(e.state.TopLine, 0)
}

// SaveHistory records the buffer as a new undo step. Saving an unchanged
// buffer only refreshes the cursor of the current step.
func (e *editor) SaveHistory() {
	current := snapshot{content: e.buffer.GetCurrentContent(), cursor: e.buffer.GetCursor()}

	if e.historyPos < len(e.history)-1 {
		e.history = e.history[:e.historyPos+1]
	}

	if e.historyPos >= 0 && e.history[e.historyPos].content == current.content {
		e.history[e.historyPos].cursor = current.cursor
		return
	}

	e.history = append(e.history, current)
	if limit := int(e.maxHistory); limit > 0 && len(e.history) > limit {
		e.history = e.history[len(e.history)-limit:]
	}
	e.historyPos = len(e.history) - 1
}

func (e *editor) Undo() error {
	if e.historyPos <= 0 {
		return ErrOldestChange
	}
	e.historyPos--
	e.restore(e.history[e.historyPos])
	e.DispatchSignal(UndoSignal{})
	return nil
}

func (e *editor) Redo() error {
	if e.historyPos >= len(e.history)-1 {
		return ErrNewestChange
	}
	e.historyPos++
	e.restore(e.history[e.historyPos])
	e.DispatchSignal(RedoSignal{})
	return nil
}

func (e *editor) restore(s snapshot) {
	e.buffer.SetContent([]byte(s.content))
	e.buffer.SetCursor(s.cursor)
	e.ScrollViewport()
}

// StoreText stores text removed or copied by op in the pending register (or
// the default ones) and notifies the host.
func (e *editor) StoreText(op Operator, text string, linewise bool) *Error {
	name := e.state.PendingRegister
	e.ResetPendingRegister()

	lines := strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1

	if err := e.registers.PushText(name, op, text, linewise); err != nil {
		// The register itself was written, only the system clipboard failed.
		e.logger.Warn("clipboard write failed", "err", err)
		e.DispatchError(ErrCopyFailedId, fmt.Errorf("clipboard: %w", err))
	}

	switch op {
	case OperatorYank:
		e.DispatchSignal(YankSignal{content: text, lines: lines, linewise: linewise, register: name})
	case OperatorDelete:
		e.DispatchSignal(DeleteSignal{content: text, lines: lines})
	}

	return nil
}

// Put inserts the content of the pending register after (or before) the
// cursor and returns the inserted text.
func (e *editor) Put(before bool) (string, *Error) {
	name := string(UnnamedRegister)
	if e.state.PendingRegister != 0 {
		name = string(e.state.PendingRegister)
	}

	reg := e.registers.GetRegister(name)
	text := reg.String()
	if text == "" {
		return "", newError(ErrEmptyRegisterId, fmt.Errorf("%w: %s", ErrEmptyRegister, name))
	}

	cursor := e.buffer.GetCursor()
	row := cursor.Position.Row

	if reg.Linewise {
		lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		at := row + 1
		if before {
			at = row
		}
		if err := e.buffer.InsertLines(at, lines); err != nil {
			return "", newError(ErrFailedToPasteId, err)
		}
		cursor.Position = Position{Row: at, Col: 0}
		e.buffer.SetCursor(horizontal(cursor, firstNonBlank(e.buffer, at)))
		e.SaveHistory()
		e.DispatchSignal(PasteSignal{totalLines: len(lines)})
		return text, nil
	}

	col := cursor.Position.Col
	if !before && e.buffer.LineRuneCount(row) > 0 {
		col++
	}
	if err := e.buffer.InsertRunesAt(row, col, []rune(text)); err != nil {
		return "", newError(ErrFailedToPasteId, err)
	}

	// The cursor rests on the last inserted rune.
	end := Position{Row: row, Col: col + len([]rune(text)) - 1}
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		end = Position{Row: row + strings.Count(text, "\n"), Col: max(len([]rune(text[i+1:]))-1, 0)}
	}
	cursor.Position = end
	e.buffer.SetCursor(horizontal(cursor, end.Col))

	e.SaveHistory()
	e.DispatchSignal(PasteSignal{totalLines: strings.Count(text, "\n") + 1})

	return text, nil
}

// GetSelectionStatus reports how pos is covered by the active visual selection.
func (e *editor) GetSelectionStatus(pos Position) SelectionType {
	if e.state.VisualStart.Row == -1 {
		return SelectionNone
	}

	start, end := NormalizeSelection(e.state.VisualStart, e.buffer.GetCursor().Position)

	if e.state.Mode == VisualLineMode {
		if pos.Row >= start.Row && pos.Row <= end.Row {
			return SelectionLine
		}
		return SelectionNone
	}

	inside := (pos.Row > start.Row && pos.Row < end.Row) ||
		(pos.Row == start.Row && pos.Row == end.Row && pos.Col >= start.Col && pos.Col <= end.Col) ||
		(pos.Row == start.Row && pos.Row != end.Row && pos.Col >= start.Col) ||
		(pos.Row == end.Row && pos.Row != start.Row && pos.Col <= end.Col)

	if inside {
		return SelectionCharacter
	}

	return SelectionNone
}

func (e *editor) Save() {
	e.buffer.SaveContent()
	e.DispatchSignal(SaveSignal{content: e.buffer.GetSavedContent()})
}

func (e *editor) Quit() {
	e.state.Quit = true
	e.DispatchSignal(QuitSignal{})
}

func (e *editor) IsNormalMode() bool     { return e.state.Mode == NormalMode }
func (e *editor) IsInsertMode() bool     { return e.state.Mode == InsertMode }
func (e *editor) IsVisualMode() bool     { return e.state.Mode == VisualMode }
func (e *editor) IsVisualLineMode() bool { return e.state.Mode == VisualLineMode }
func (e *editor) IsCommandMode() bool    { return e.state.Mode == CommandMode }

// errorOf converts a plain error from a history operation into an *Error.
func errorOf(id ErrorId, err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return newError(id, err)
}
