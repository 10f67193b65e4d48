// Package app is a terminal note editor with one vi-mode pane per file.
// Yanked text is highlighted by the yank highlight plugin.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	editor "github.com/ionut-t/yankhighlight/adapter-bubbletea"
	"github.com/ionut-t/yankhighlight/adapter-bubbletea/decoration"
	"github.com/ionut-t/yankhighlight/core"
	"github.com/ionut-t/yankhighlight/internal/config"
	"github.com/ionut-t/yankhighlight/internal/plugin"
)

const messageDuration = 3 * time.Second

const (
	optionHighlightDuration = "highlightduration"
	optionClearHighlight    = "clearhighlight"
)

var (
	ErrNoFileName    = errors.New("no file name")
	ErrUnknownOption = errors.New("unknown option")
)

var (
	activeBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
	inactiveBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	tabStyle            = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	activeTabStyle      = tabStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
)

// decorationMsg reports that the yank highlight of a view changed.
type decorationMsg struct {
	viewID string
}

type configChangedMsg struct {
	settings config.Settings
}

type Options struct {
	// Files opened in their own pane. No files opens one empty scratch pane.
	Files     []string
	Language  string
	Theme     string
	Config    *config.Store
	Logger    *slog.Logger
	Clipboard core.Clipboard
}

type Model struct {
	ws           *workspace
	config       *config.Store
	plugin       *plugin.Plugin
	settings     *settingsTab
	settingsOpen bool
	changes      chan config.Settings
	logger       *slog.Logger
	width        int
	height       int
}

// New opens a pane per file and loads the yank highlight plugin into the
// workspace.
func New(opts Options) (Model, error) {
	if opts.Config == nil {
		return Model{}, errors.New("app: config store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = editor.SystemClipboard{}
	}

	settings := opts.Config.Snapshot()
	if opts.Language == "" {
		opts.Language = settings.Language
	}
	if opts.Theme == "" {
		opts.Theme = settings.Theme
	}

	registers := core.NewRegisterController(opts.Clipboard)
	ws := newWorkspace(registers, decoration.New())

	files := opts.Files
	if len(files) == 0 {
		files = []string{""}
	}

	for _, path := range files {
		p, err := openPane(path, ws, opts)
		if err != nil {
			return Model{}, err
		}
		ws.add(p)
	}

	m := Model{
		ws:       ws,
		config:   opts.Config,
		plugin:   plugin.New(opts.Config, plugin.WithLogger(opts.Logger.With("component", "yank"))),
		settings: newSettingsTab(settings.HighlightDuration),
		changes:  make(chan config.Settings, 1),
		logger:   opts.Logger,
	}

	ws.setActive(0)
	m.plugin.OnLoad(ws)

	changes := m.changes
	m.config.Watch(func(s config.Settings) {
		select {
		case changes <- s:
		default:
		}
	})

	return m, nil
}

func openPane(path string, ws *workspace, opts Options) (*pane, error) {
	e := editor.New(80, 20,
		editor.WithClipboard(opts.Clipboard),
		editor.WithRegisters(ws.registers),
		editor.WithDecorations(ws.decorations),
		editor.WithLogger(opts.Logger),
	)
	e.SetCursorMode(editor.CursorBlink)
	e.SetLanguage(opts.Language, opts.Theme)
	e.SetPlaceholder("Start typing...")

	if path != "" {
		content, err := os.ReadFile(expandHome(path))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error opening %s: %w", path, err)
		}
		e.SetBytes(content)
	}

	return &pane{path: path, editor: e}, nil
}

// Close unloads the plugin. Call it after the program exits.
func (m Model) Close() {
	m.plugin.OnUnload()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenForDecorations(), m.listenForConfig()}
	for _, p := range m.ws.panes {
		cmds = append(cmds, p.editor.Init())
	}
	return tea.Batch(cmds...)
}

func (m Model) listenForDecorations() tea.Cmd {
	updates := m.ws.decorations.Updates()
	return func() tea.Msg {
		return decorationMsg{viewID: <-updates}
	}
}

func (m Model) listenForConfig() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		return configChangedMsg{settings: <-changes}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case durationChangedMsg:
		m.applyDuration(msg.Value)
		return m, nil

	case closeSettingsMsg:
		m.settingsOpen = false
		m.settings.close()
		m.ws.setActive(m.ws.active)
		return m, nil

	case decorationMsg:
		cmd := m.updatePane(msg.viewID, editor.RedrawMsg{ViewID: msg.viewID})
		return m, tea.Batch(cmd, m.listenForDecorations())

	case configChangedMsg:
		m.logger.Info("settings reloaded", "highlight_duration", msg.settings.HighlightDuration)
		if !m.settingsOpen {
			m.settings.input.SetValue(fmt.Sprint(msg.settings.HighlightDuration))
		}
		return m, m.listenForConfig()

	case editor.OptionMsg:
		return m, m.handleOption(msg)

	case editor.SaveMsg:
		return m, m.save(msg)

	case editor.QuitMsg:
		return m, tea.Quit

	case editor.YankMsg:
		return m, m.dispatchMessage(msg.ViewID, fmt.Sprintf("%d bytes yanked", len(msg.Content)))

	case editor.DeleteMsg:
		return m, m.dispatchMessage(msg.ViewID, fmt.Sprintf("%d bytes deleted", len(msg.Content)))

	case editor.ErrorMsg:
		if p := m.ws.pane(msg.ViewID); p != nil {
			return m, p.editor.DispatchError(msg.Error, messageDuration)
		}
		return m, nil
	}

	// Everything else is internal to the panes; each pane ignores messages
	// carrying another view's ID.
	var cmds []tea.Cmd
	for _, p := range m.ws.panes {
		cmds = append(cmds, m.updatePane(p.editor.ViewID(), msg))
	}
	if m.settingsOpen {
		cmds = append(cmds, m.settings.Update(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "f2":
		if m.settingsOpen {
			return m, func() tea.Msg { return closeSettingsMsg{} }
		}
		m.settingsOpen = true
		for _, p := range m.ws.panes {
			p.editor.Blur()
		}
		return m, m.settings.open(m.config.Snapshot().HighlightDuration)
	}

	if m.settingsOpen {
		return m, m.settings.Update(msg)
	}

	if msg.String() == "ctrl+w" {
		m.ws.next()
		return m, nil
	}

	active := m.ws.activePane()
	if active == nil {
		return m, nil
	}
	return m, m.updatePane(active.editor.ViewID(), msg)
}

func (m Model) updatePane(viewID string, msg tea.Msg) tea.Cmd {
	p := m.ws.pane(viewID)
	if p == nil {
		return nil
	}

	updated, cmd := p.editor.Update(msg)
	p.editor = updated.(editor.Model)
	return cmd
}

func (m Model) dispatchMessage(viewID, message string) tea.Cmd {
	p := m.ws.pane(viewID)
	if p == nil {
		return nil
	}
	return p.editor.DispatchMessage(message, messageDuration)
}

func (m Model) applyDuration(value string) {
	duration, err := m.config.SetHighlightDuration(value)
	switch {
	case errors.Is(err, config.ErrInvalidDuration):
		m.settings.note = fmt.Sprintf("not a number, using %d", duration)
	case err != nil:
		m.logger.Error("failed to save settings", "error", err)
		m.settings.note = err.Error()
	default:
		m.settings.note = ""
	}
}

func (m Model) handleOption(msg editor.OptionMsg) tea.Cmd {
	p := m.ws.pane(msg.ViewID)
	if p == nil {
		return nil
	}

	switch msg.Name {
	case optionHighlightDuration:
		duration, err := m.config.SetHighlightDuration(msg.Value)
		if err != nil {
			return p.editor.DispatchError(err, messageDuration)
		}
		return p.editor.DispatchMessage(fmt.Sprintf("%s=%d", optionHighlightDuration, duration), messageDuration)

	case optionClearHighlight:
		enabled := msg.Value == "true"
		if err := m.config.SetClearHighlight(enabled); err != nil {
			return p.editor.DispatchError(err, messageDuration)
		}
		name := optionClearHighlight
		if !enabled {
			name = "no" + name
		}
		return p.editor.DispatchMessage(name, messageDuration)
	}

	return p.editor.DispatchError(fmt.Errorf("%w: %s", ErrUnknownOption, msg.Name), messageDuration)
}

func (m Model) save(msg editor.SaveMsg) tea.Cmd {
	p := m.ws.pane(msg.ViewID)
	if p == nil {
		return nil
	}

	if p.path == "" {
		return p.editor.DispatchError(ErrNoFileName, messageDuration)
	}

	if err := os.WriteFile(expandHome(p.path), []byte(msg.Content), 0o644); err != nil {
		m.logger.Error("failed to save file", "path", p.path, "error", err)
		return p.editor.DispatchError(err, messageDuration)
	}

	m.logger.Info("file saved", "path", p.path, "bytes", len(msg.Content))
	return p.editor.DispatchMessage(fmt.Sprintf("file saved to %s", p.path), messageDuration)
}

// resize splits the width between the panes. Borders take two cells each way
// and the tab bar one row.
func (m Model) resize() {
	n := len(m.ws.panes)
	if n == 0 {
		return
	}

	height := max(3, m.height-3)
	for i, p := range m.ws.panes {
		width := m.width / n
		if i == n-1 {
			width = m.width - width*(n-1)
		}
		p.editor.SetSize(max(1, width-2), height)
	}
}

func (m Model) View() string {
	editorTab, settingsTab := activeTabStyle, tabStyle
	if m.settingsOpen {
		editorTab, settingsTab = tabStyle, activeTabStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		editorTab.Render("Editor"),
		settingsTab.Render("Settings (f2)"),
	)

	if m.settingsOpen {
		return lipgloss.JoinVertical(lipgloss.Left, tabs, activeBorderStyle.Padding(0, 1).Render(m.settings.View()))
	}

	panes := make([]string, 0, len(m.ws.panes))
	for i, p := range m.ws.panes {
		style := inactiveBorderStyle
		if i == m.ws.active {
			style = activeBorderStyle
		}
		panes = append(panes, style.Render(p.editor.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabs, lipgloss.JoinHorizontal(lipgloss.Top, panes...))
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
