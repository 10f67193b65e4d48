package app

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	editor "github.com/ionut-t/yankhighlight/adapter-bubbletea"
	"github.com/ionut-t/yankhighlight/core"
	"github.com/ionut-t/yankhighlight/internal/config"
)

type memoryClipboard struct{ text string }

func (c *memoryClipboard) Write(text string) error { c.text = text; return nil }
func (c *memoryClipboard) Read() (string, error)   { return c.text, nil }

func newTestApp(t *testing.T, files ...string) Model {
	t.Helper()

	store, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	m, err := New(Options{Files: files, Config: store, Clipboard: &memoryClipboard{}})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return updated.(Model)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func keys(s string) []tea.Msg {
	var msgs []tea.Msg
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func viewID(m Model, i int) string {
	return m.ws.panes[i].editor.ViewID()
}

func TestNewOpensScratchPane(t *testing.T) {
	m := newTestApp(t)

	require.Len(t, m.ws.panes, 1)
	assert.Empty(t, m.ws.panes[0].path)
	assert.True(t, m.ws.panes[0].editor.IsFocused())
	assert.True(t, m.plugin.Initialized(viewID(m, 0)))
}

func TestNewOpensFiles(t *testing.T) {
	a := writeFile(t, "a.md", "alpha")
	b := writeFile(t, "b.md", "beta")
	missing := filepath.Join(t.TempDir(), "new.md")

	m := newTestApp(t, a, b, missing)

	require.Len(t, m.ws.panes, 3)
	assert.Equal(t, "alpha", m.ws.panes[0].editor.GetCurrentContent())
	assert.Equal(t, "beta", m.ws.panes[1].editor.GetCurrentContent())
	assert.True(t, m.ws.panes[2].editor.IsEmpty())
}

func TestNewNeedsConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestYankIsHighlighted(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "hello world\nsecond"))

	m = send(m, keys("yy")...)

	text, ok := m.ws.decorations.Text(viewID(m, 0))
	require.True(t, ok)
	assert.Equal(t, "hello world", text)
}

func TestNonYankCommandsAreNotHighlighted(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "hello world\nsecond"))

	m = send(m, keys("dwj")...)

	_, ok := m.ws.decorations.Text(viewID(m, 0))
	assert.False(t, ok)
}

func TestCtrlWCyclesPanes(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "left"), writeFile(t, "b.md", "right"))
	right := viewID(m, 1)
	assert.False(t, m.plugin.Initialized(right))

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlW})

	assert.Equal(t, 1, m.ws.active)
	assert.True(t, m.ws.panes[1].editor.IsFocused())
	assert.False(t, m.ws.panes[0].editor.IsFocused())
	assert.True(t, m.plugin.Initialized(right))

	m = send(m, keys("yy")...)

	text, ok := m.ws.decorations.Text(right)
	require.True(t, ok)
	assert.Equal(t, "right", text)
	_, ok = m.ws.decorations.Text(viewID(m, 0))
	assert.False(t, ok, "only the active pane is decorated")

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlW})
	assert.Equal(t, 0, m.ws.active)
}

func TestSharedRegistersAcrossPanes(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "copied"), writeFile(t, "b.md", ""))

	m = send(m, keys("yy")...)
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlW})
	m = send(m, keys("P")...)

	assert.Equal(t, "copied\n", m.ws.panes[1].editor.GetCurrentContent())
}

func TestSettingsTab(t *testing.T) {
	m := newTestApp(t)

	m = send(m, tea.KeyMsg{Type: tea.KeyF2})
	assert.True(t, m.settingsOpen)
	assert.False(t, m.ws.panes[0].editor.IsFocused())
	assert.Contains(t, ansi.Strip(m.View()), "Highlight duration in milliseconds")

	tests := []struct {
		value string
		want  int
		note  bool
	}{
		{"1200", 1200, false},
		{"abc", config.DefaultHighlightDuration, true},
		{"0", 0, false},
	}
	for _, tt := range tests {
		m = send(m, durationChangedMsg{Value: tt.value})
		assert.Equal(t, tt.want, m.config.Snapshot().HighlightDuration, tt.value)
		assert.Equal(t, tt.note, m.settings.note != "", tt.value)
	}

	m = send(m, closeSettingsMsg{})
	assert.False(t, m.settingsOpen)
	assert.True(t, m.ws.panes[0].editor.IsFocused())
}

func TestSettingsTabKeys(t *testing.T) {
	s := newSettingsTab(500)
	s.open(500)

	cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	assert.NotNil(t, cmd)
	assert.Equal(t, "5000", s.input.Value())

	cmd = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, closeSettingsMsg{}, cmd())
}

func TestKeysGoToSettingsWhenOpen(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "text"))

	m = send(m, tea.KeyMsg{Type: tea.KeyF2})
	m = send(m, keys("x")...)

	assert.Equal(t, "text", m.ws.panes[0].editor.GetCurrentContent())
	assert.Equal(t, "500x", m.settings.input.Value())
}

func TestOptions(t *testing.T) {
	m := newTestApp(t)
	id := viewID(m, 0)

	m = send(m, editor.OptionMsg{ViewID: id, Name: "highlightduration", Value: "900"})
	assert.Equal(t, 900, m.config.Snapshot().HighlightDuration)

	m = send(m, editor.OptionMsg{ViewID: id, Name: "clearhighlight", Value: "false"})
	assert.False(t, m.config.ClearHighlight())

	m = send(m, editor.OptionMsg{ViewID: id, Name: "clearhighlight", Value: "true"})
	assert.True(t, m.config.ClearHighlight())

	_, cmd := m.Update(editor.OptionMsg{ViewID: id, Name: "nonsense", Value: "true"})
	assert.NotNil(t, cmd)
}

func TestSetCommandUpdatesConfig(t *testing.T) {
	m := newTestApp(t)
	id := viewID(m, 0)

	m = send(m, append(keys(":set highlightduration=750"), tea.KeyMsg{Type: tea.KeyEnter})...)
	m = send(m, optionSignal(t, m.ws.panes[0].editor, id))

	assert.Equal(t, 750, m.config.Snapshot().HighlightDuration)
}

func TestSave(t *testing.T) {
	path := writeFile(t, "note.md", "old")
	m := newTestApp(t, path)

	m = send(m, editor.SaveMsg{ViewID: viewID(m, 0), Content: "new"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSaveScratchPane(t *testing.T) {
	m := newTestApp(t)

	_, cmd := m.Update(editor.SaveMsg{ViewID: viewID(m, 0), Content: "text"})

	assert.NotNil(t, cmd)
}

func TestQuit(t *testing.T) {
	m := newTestApp(t)

	_, cmd := m.Update(editor.QuitMsg{ViewID: viewID(m, 0)})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDecorationUpdatesRedrawAndRearm(t *testing.T) {
	m := newTestApp(t)

	_, cmd := m.Update(decorationMsg{viewID: viewID(m, 0)})

	assert.NotNil(t, cmd)
}

func TestView(t *testing.T) {
	m := newTestApp(t, writeFile(t, "a.md", "left"), writeFile(t, "b.md", "right"))

	out := ansi.Strip(m.View())

	assert.Contains(t, out, "left")
	assert.Contains(t, out, "right")
	assert.Contains(t, out, "Settings (f2)")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes.md"), expandHome("~/notes.md"))
	assert.Equal(t, "/tmp/x.md", expandHome("/tmp/x.md"))
}

// optionSignal reads the pane's signals up to the first option and returns
// the message the pane turns it into.
func optionSignal(t *testing.T, pane editor.Model, viewID string) tea.Msg {
	t.Helper()

	for {
		select {
		case sig := <-pane.GetEditor().GetUpdateSignalChan():
			if option, ok := sig.(core.OptionSignal); ok {
				name, value := option.Value()
				return editor.OptionMsg{ViewID: viewID, Name: name, Value: value}
			}
		default:
			t.Fatal("no option signal")
			return nil
		}
	}
}
