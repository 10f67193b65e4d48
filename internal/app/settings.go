package app

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ionut-t/yankhighlight/internal/config"
)

// durationChangedMsg is sent on every edit of the duration field.
type durationChangedMsg struct {
	Value string
}

type closeSettingsMsg struct{}

var (
	settingsTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	settingsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	settingsHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	settingsNoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

type settingsTab struct {
	input textinput.Model
	note  string
}

func newSettingsTab(duration int) *settingsTab {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = strconv.Itoa(config.DefaultHighlightDuration)
	ti.CharLimit = 9
	ti.Width = 12
	ti.SetValue(strconv.Itoa(duration))

	return &settingsTab{input: ti}
}

func (s *settingsTab) open(duration int) tea.Cmd {
	s.input.SetValue(strconv.Itoa(duration))
	s.input.CursorEnd()
	s.note = ""
	return s.input.Focus()
}

func (s *settingsTab) close() {
	s.input.Blur()
}

func (s *settingsTab) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return func() tea.Msg { return closeSettingsMsg{} }
	}

	prev := s.input.Value()

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if value := s.input.Value(); value != prev {
		return tea.Batch(cmd, func() tea.Msg { return durationChangedMsg{Value: value} })
	}

	return cmd
}

func (s *settingsTab) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		settingsTitleStyle.Render("Settings"),
		"",
		settingsLabelStyle.Render("Highlight duration in milliseconds"),
		s.input.View(),
		settingsNoteStyle.Render(s.note),
		"",
		settingsHintStyle.Render("esc close"),
	)
}
