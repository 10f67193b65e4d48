package adapter_bubbletea

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ionut-t/yankhighlight/adapter-bubbletea/decoration"
	"github.com/ionut-t/yankhighlight/adapter-bubbletea/highlighter"
	"github.com/ionut-t/yankhighlight/core"
)

type Theme struct {
	NormalModeStyle        lipgloss.Style
	InsertModeStyle        lipgloss.Style
	VisualModeStyle        lipgloss.Style
	CommandModeStyle       lipgloss.Style
	StatusLineStyle        lipgloss.Style
	CommandLineStyle       lipgloss.Style
	MessageStyle           lipgloss.Style
	LineNumberStyle        lipgloss.Style
	CurrentLineNumberStyle lipgloss.Style
	SelectionStyle         lipgloss.Style
	ErrorStyle             lipgloss.Style
	HighlightYankStyle     lipgloss.Style
	PlaceholderStyle       lipgloss.Style
}

var DefaultTheme = Theme{
	NormalModeStyle:        lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("255")),
	InsertModeStyle:        lipgloss.NewStyle().Background(lipgloss.Color("26")).Foreground(lipgloss.Color("255")),
	VisualModeStyle:        lipgloss.NewStyle().Background(lipgloss.Color("127")).Foreground(lipgloss.Color("255")),
	CommandModeStyle:       lipgloss.NewStyle().Background(lipgloss.Color("208")).Foreground(lipgloss.Color("255")),
	CommandLineStyle:       lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("255")),
	StatusLineStyle:        lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")),
	MessageStyle:           lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	ErrorStyle:             lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	LineNumberStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Align(lipgloss.Right),
	CurrentLineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Align(lipgloss.Right),
	SelectionStyle:         lipgloss.NewStyle().Background(lipgloss.Color("237")),
	HighlightYankStyle:     lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")).Bold(true),
	PlaceholderStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// MessageDuration is how long command line messages stay visible.
const MessageDuration = 3 * time.Second

type CursorMode int

const (
	CursorSteady CursorMode = iota
	CursorBlink
)

const cursorBlinkInterval = 500 * time.Millisecond
const cursorActivityResetDelay = 250 * time.Millisecond

type cursorBlinkContext struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Model is a bubbletea view over one core.Editor. Every Model has its own view
// ID; messages it produces carry that ID so a host with several panes can route
// them.
type Model struct {
	id                 string
	editor             core.Editor
	viewport           viewport.Model
	width              int
	height             int
	showLineNumbers    bool
	showTildeIndicator bool
	showStatusLine     bool
	theme              Theme
	StatusLineFunc     func() string
	err                error
	message            string
	disableVimMode     bool
	visualLayout       []VisualLineInfo // wrapped lines of the whole buffer
	cursorVisualRow    int              // index of the cursor's line in visualLayout
	visualTopLine      int              // first visualLayout row shown
	isFocused          bool
	placeholder        string
	cursorMode         CursorMode
	cursorVisible      bool
	cursorBlinkContext *cursorBlinkContext
	clearMsgCancel     context.CancelFunc
	highlighter        *highlighter.Highlighter
	highlighterTheme   string
	decorations        *decoration.Renderer
	logger             *slog.Logger
}

type ErrorMsg struct {
	ViewID string
	ID     core.ErrorId
	Error  error
}

type SaveMsg struct {
	ViewID  string
	Content string
}

type QuitMsg struct {
	ViewID string
}

type YankMsg struct {
	ViewID   string
	Content  string
	Lines    int
	Linewise bool
}

type DeleteMsg struct {
	ViewID  string
	Content string
	Lines   int
}

type PasteMsg struct {
	ViewID string
	Lines  int
}

type UndoMsg struct {
	ViewID string
}

type RedoMsg struct {
	ViewID string
}

// OptionMsg carries a ":set" option the editor does not handle itself.
type OptionMsg struct {
	ViewID string
	Name   string
	Value  string
}

// RedrawMsg asks the view with ViewID to render again. Hosts send it when the
// yank decoration of that view changes outside of Update.
type RedrawMsg struct {
	ViewID string
}

type signalMsg struct {
	viewID string
	signal core.Signal
}

type clearMsg struct {
	viewID string
}

type cursorBlinkMsg struct {
	viewID string
}

type resumeBlinkCycleMsg struct {
	viewID string
}

// SystemClipboard backs the '+' and '*' registers with the system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

func (SystemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

type options struct {
	registers   *core.RegisterController
	clipboard   core.Clipboard
	decorations *decoration.Renderer
	logger      *slog.Logger
}

type Option func(*options)

// WithRegisters shares rc between views so a yank in one pane can be put in
// another.
func WithRegisters(rc *core.RegisterController) Option {
	return func(o *options) {
		o.registers = rc
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c core.Clipboard) Option {
	return func(o *options) {
		o.clipboard = c
	}
}

// WithDecorations sets the renderer the view reads its yank highlight from.
func WithDecorations(r *decoration.Renderer) Option {
	return func(o *options) {
		o.decorations = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func (m *Model) dispatchClearMsg(duration time.Duration) tea.Cmd {
	if m.clearMsgCancel != nil {
		m.clearMsgCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	m.clearMsgCancel = cancel
	id := m.id

	return func() tea.Msg {
		defer cancel()
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			return clearMsg{viewID: id}
		}
		return nil
	}
}

func New(width, height int, opts ...Option) Model {
	o := options{clipboard: SystemClipboard{}, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger := o.logger.With("view", id)

	editorOpts := []core.Option{core.WithLogger(logger)}
	if o.registers != nil {
		editorOpts = append(editorOpts, core.WithRegisters(o.registers))
	}

	m := Model{
		id:              id,
		editor:          core.New(o.clipboard, editorOpts...),
		viewport:        viewport.New(width, max(1, height-2)),
		showLineNumbers: true,
		showStatusLine:  true,
		theme:           DefaultTheme,
		cursorMode:      CursorSteady,
		cursorVisible:   true,
		cursorBlinkContext: &cursorBlinkContext{
			ctx: context.Background(),
		},
		decorations: o.decorations,
		logger:      logger,
	}

	m.SetSize(width, height)

	return m
}

// ViewID identifies the view for the lifetime of the process.
func (m Model) ViewID() string {
	return m.id
}

// Events returns the emitter the view's key and command events go through.
func (m Model) Events() *core.Emitter {
	return m.editor.Events()
}

func (m Model) Registers() *core.RegisterController {
	return m.editor.Registers()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-2)

	state := m.editor.GetState()
	state.ViewportWidth = m.viewport.Width
	state.ViewportHeight = m.viewport.Height
	m.editor.SetState(state)

	m.calculateVisualMetrics()
	m.updateVisualTopLine()
	m.renderVisibleSlice()
}

// SetBytes sets the content of the editor.
func (m *Model) SetBytes(content []byte) {
	m.editor.SetContent(content)
	m.handleContentChange()
	m.renderVisibleSlice()
}

func (m *Model) SetContent(content string) {
	m.SetBytes([]byte(content))
}

func (m *Model) WithTheme(theme Theme) {
	m.theme = theme
}

// SetLanguage sets the language used for syntax highlighting. An empty
// language disables it.
//
// theme names a chroma style, see https://github.com/alecthomas/chroma/tree/master/styles
func (m *Model) SetLanguage(language string, theme string) {
	if m.highlighter != nil && m.highlighter.Language() == language && m.highlighterTheme == theme {
		return
	}

	m.highlighterTheme = theme
	if language == "" {
		m.highlighter = nil
		return
	}

	m.highlighter = highlighter.New(language, theme)
	m.renderVisibleSlice()
}

// DispatchMessage shows message in the command line for duration.
func (m *Model) DispatchMessage(message string, duration time.Duration) tea.Cmd {
	m.message = message
	m.err = nil

	return m.dispatchClearMsg(duration)
}

// DispatchError shows err in the command line for duration.
func (m *Model) DispatchError(err error, duration time.Duration) tea.Cmd {
	m.err = err
	m.message = ""

	return m.dispatchClearMsg(duration)
}

func (m *Model) HideLineNumbers(hide bool) {
	m.showLineNumbers = !hide
}

// ShowRelativeLineNumbers has no effect when vim mode is disabled.
func (m *Model) ShowRelativeLineNumbers(show bool) {
	if m.disableVimMode {
		return
	}

	m.editor.ShowRelativeLineNumbers(show)
}

// ShowTildeIndicator marks rows past the end of the buffer with "~". It needs
// line numbers.
func (m *Model) ShowTildeIndicator(show bool) {
	m.showTildeIndicator = show
}

func (m *Model) HideStatusLine(hide bool) {
	m.showStatusLine = !hide
}

// GetSavedContent returns the content as of the last save.
func (m *Model) GetSavedContent() string {
	return m.editor.GetBuffer().GetSavedContent()
}

func (m *Model) GetCurrentContent() string {
	return m.editor.GetBuffer().GetCurrentContent()
}

func (m *Model) HasChanges() bool {
	return m.editor.GetBuffer().IsModified()
}

func (m *Model) GetEditor() core.Editor {
	return m.editor
}

// DisableVimMode turns the view into a plain text area: keys are inserted as
// text and no key events are published.
func (m *Model) DisableVimMode(disable bool) {
	m.disableVimMode = disable
	m.editor.DisableVimMode(disable)
}

func (m *Model) Focus() {
	m.isFocused = true
	m.cursorVisible = true
}

func (m *Model) Blur() {
	m.isFocused = false
	m.cursorVisible = false
	m.renderVisibleSlice()
}

func (m *Model) IsFocused() bool {
	return m.isFocused
}

func (m *Model) IsNormalMode() bool {
	return m.editor.IsNormalMode()
}

func (m *Model) IsInsertMode() bool {
	return m.editor.IsInsertMode()
}

func (m *Model) IsVisualMode() bool {
	return m.editor.IsVisualMode() || m.editor.IsVisualLineMode()
}

func (m *Model) IsCommandMode() bool {
	return m.editor.IsCommandMode()
}

func (m *Model) SetPlaceholder(placeholder string) {
	m.placeholder = placeholder
}

func (m *Model) IsEmpty() bool {
	return m.editor.GetBuffer().IsEmpty()
}

// SetCursorMode switches between a steady and a blinking cursor.
func (m *Model) SetCursorMode(mode CursorMode) {
	m.cursorMode = mode
	m.cursorVisible = m.isFocused
}

func (m *Model) SetCursorPosition(row, col int) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid cursor position: (%d, %d)", row, col)
	}

	cursor := m.editor.GetBuffer().GetCursor()
	cursor.Position = core.Position{Row: row, Col: col}
	cursor.Preferred = col
	m.editor.GetBuffer().SetCursor(cursor)

	m.calculateVisualMetrics()
	m.updateVisualTopLine()

	return nil
}

func (m *Model) SetMaxHistory(max uint32) {
	m.editor.SetMaxHistory(max)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEditorUpdate(), m.CursorBlink())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.isFocused {
			break
		}

		if err := m.editor.HandleKey(convertBubbleKey(msg)); err != nil {
			id := m.id
			cmds = append(cmds, func() tea.Msg {
				return ErrorMsg{ViewID: id, ID: err.ID(), Error: err}
			})
		}

		m.handleContentChange()

		m.cursorVisible = true
		if m.cursorBlinkContext.cancel != nil {
			m.cursorBlinkContext.cancel()
		}
		cmds = append(cmds, m.restartBlinkCycleCmd())

	case signalMsg:
		if msg.viewID != m.id {
			break
		}
		cmds = append(cmds, m.handleSignal(msg.signal), m.listenForEditorUpdate())

	case clearMsg:
		if msg.viewID != m.id {
			break
		}
		m.message = ""
		m.err = nil
		m.clearMsgCancel = nil

	case cursorBlinkMsg:
		if msg.viewID != m.id {
			break
		}
		if m.isFocused && m.cursorMode == CursorBlink {
			m.cursorVisible = !m.cursorVisible
			cmds = append(cmds, m.CursorBlink())
		} else {
			m.cursorVisible = m.isFocused
		}

	case resumeBlinkCycleMsg:
		if msg.viewID == m.id && m.isFocused && m.cursorMode == CursorBlink {
			m.cursorVisible = true
			cmds = append(cmds, m.CursorBlink())
		}
	}

	m.calculateVisualMetrics()
	m.updateVisualTopLine()
	m.renderVisibleSlice()

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.disableVimMode {
		return m.viewport.View()
	}

	state := m.editor.GetState()

	commandLine := m.theme.CommandLineStyle.Render(state.CommandLine)

	if m.message != "" {
		commandLine = m.theme.MessageStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.message)
	}

	if m.err != nil {
		commandLine = m.theme.ErrorStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.err.Error())
	}

	if paddingWidth := m.width - lipgloss.Width(commandLine); paddingWidth > 0 {
		commandLine += m.theme.CommandLineStyle.Render(strings.Repeat(" ", paddingWidth))
	}

	parts := []string{m.viewport.View()}
	if statusLine := m.getStatusLine(); statusLine != "" {
		parts = append(parts, statusLine)
	}
	parts = append(parts, commandLine)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) getStatusLine() string {
	if !m.showStatusLine {
		return ""
	}

	if m.StatusLineFunc != nil {
		return m.StatusLineFunc()
	}

	state := m.editor.GetState()

	var statusLine string
	switch state.Mode {
	case core.NormalMode:
		statusLine = m.theme.NormalModeStyle.Render(" NORMAL ")
	case core.InsertMode:
		statusLine = m.theme.InsertModeStyle.Render(" INSERT ")
	case core.VisualMode:
		statusLine = m.theme.VisualModeStyle.Render(" VISUAL ")
	case core.VisualLineMode:
		statusLine = m.theme.VisualModeStyle.Render(" VISUAL LINE ")
	case core.CommandMode:
		statusLine = m.theme.CommandModeStyle.Render(" COMMAND ")
	}

	cursor := m.editor.GetBuffer().GetCursor()
	cursorInfo := fmt.Sprintf("%d/%d ", cursor.Position.Row+1, cursor.Position.Col+1)

	width := m.width - (lipgloss.Width(cursorInfo) + lipgloss.Width(statusLine))
	gap := strings.Repeat(" ", max(0, width))

	return statusLine + m.theme.StatusLineStyle.Render(gap+cursorInfo)
}

// listenForEditorUpdate waits for the next editor signal. The listener is
// re-armed only when this view receives its own signal, so there is always
// exactly one waiting per view.
func (m *Model) listenForEditorUpdate() tea.Cmd {
	ch := m.editor.GetUpdateSignalChan()
	id := m.id

	return func() tea.Msg {
		return signalMsg{viewID: id, signal: <-ch}
	}
}

func (m *Model) handleSignal(signal core.Signal) tea.Cmd {
	id := m.id
	send := func(msg tea.Msg) tea.Cmd {
		return func() tea.Msg { return msg }
	}

	switch signal := signal.(type) {
	case core.MessageSignal:
		_, text := signal.Value()
		return m.DispatchMessage(text, MessageDuration)

	case core.ErrorSignal:
		errID, err := signal.Value()
		return send(ErrorMsg{ViewID: id, ID: errID, Error: err})

	case core.YankSignal:
		content, lines, linewise := signal.Value()
		return send(YankMsg{ViewID: id, Content: content, Lines: lines, Linewise: linewise})

	case core.DeleteSignal:
		content, lines := signal.Value()
		return send(DeleteMsg{ViewID: id, Content: content, Lines: lines})

	case core.PasteSignal:
		return send(PasteMsg{ViewID: id, Lines: signal.Value()})

	case core.UndoSignal:
		m.handleContentChange()
		return send(UndoMsg{ViewID: id})

	case core.RedoSignal:
		m.handleContentChange()
		return send(RedoMsg{ViewID: id})

	case core.SaveSignal:
		return send(SaveMsg{ViewID: id, Content: signal.Value()})

	case core.QuitSignal:
		return send(QuitMsg{ViewID: id})

	case core.OptionSignal:
		name, value := signal.Value()
		return send(OptionMsg{ViewID: id, Name: name, Value: value})

	case core.EnterCommandModeSignal:
		m.message = ""
		m.err = nil
		if m.clearMsgCancel != nil {
			m.clearMsgCancel()
			m.clearMsgCancel = nil
		}
	}

	return nil
}

// convertBubbleKey converts a bubbletea key to a core key event.
func convertBubbleKey(msg tea.KeyMsg) core.KeyEvent {
	key := core.KeyEvent{}

	if len(msg.Runes) > 0 {
		key.Rune = msg.Runes[0]
	}

	if msg.Alt {
		key.Modifiers |= core.ModAlt
	}

	switch msg.Type {
	case tea.KeyRunes:
	case tea.KeyEnter:
		key.Key = core.KeyEnter
	case tea.KeySpace:
		key.Key = core.KeySpace
		key.Rune = ' '
	case tea.KeyEsc:
		key.Key = core.KeyEscape
	case tea.KeyBackspace:
		key.Key = core.KeyBackspace
	case tea.KeyTab:
		key.Key = core.KeyTab
		key.Rune = '\t'
	case tea.KeyUp:
		key.Key = core.KeyUp
	case tea.KeyDown:
		key.Key = core.KeyDown
	case tea.KeyLeft:
		key.Key = core.KeyLeft
	case tea.KeyRight:
		key.Key = core.KeyRight
	case tea.KeyHome:
		key.Key = core.KeyHome
	case tea.KeyEnd:
		key.Key = core.KeyEnd
	case tea.KeyDelete:
		key.Key = core.KeyDelete
	case tea.KeyInsert:
		key.Key = core.KeyInsert
	case tea.KeyPgUp:
		key.Key = core.KeyPageUp
	case tea.KeyPgDown:
		key.Key = core.KeyPageDown
	default:
		if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
			key.Rune = 'a' + rune(msg.Type-tea.KeyCtrlA)
			key.Modifiers |= core.ModCtrl
		}
	}

	return key
}

// CursorBlink toggles the cursor after the blink interval.
func (m *Model) CursorBlink() tea.Cmd {
	if m.cursorMode != CursorBlink || !m.isFocused {
		m.cursorVisible = m.isFocused
		return nil
	}

	if m.cursorBlinkContext.cancel != nil {
		m.cursorBlinkContext.cancel()
	}

	ctx, cancel := context.WithTimeout(m.cursorBlinkContext.ctx, cursorBlinkInterval)
	m.cursorBlinkContext.cancel = cancel
	id := m.id

	return func() tea.Msg {
		defer cancel()
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			return cursorBlinkMsg{viewID: id}
		}
		return nil
	}
}

// restartBlinkCycleCmd delays blinking after user activity.
func (m *Model) restartBlinkCycleCmd() tea.Cmd {
	if m.cursorMode != CursorBlink || !m.isFocused {
		m.cursorVisible = m.isFocused
		return nil
	}

	id := m.id
	return tea.Tick(cursorActivityResetDelay, func(time.Time) tea.Msg {
		return resumeBlinkCycleMsg{viewID: id}
	})
}

// handleContentChange refreshes the layout after the buffer changed.
func (m *Model) handleContentChange() {
	if m.highlighter != nil {
		m.highlighter.Invalidate()
	}
	m.calculateVisualMetrics()
	m.updateVisualTopLine()
}
