package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "yankhl", "config.yaml")
	s, err := Load(path)
	require.NoError(t, err)
	return s, path
}

func TestLoadCreatesDefaults(t *testing.T) {
	s, path := load(t)

	assert.FileExists(t, path)
	assert.Equal(t, DefaultHighlightDuration, s.Snapshot().HighlightDuration)
	assert.True(t, s.ClearHighlight())
	assert.Equal(t, 500*time.Millisecond, s.HighlightDuration())
	assert.Equal(t, "markdown", s.Snapshot().Language)
}

func TestLoadReadsFile(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		want  int
		clear bool
	}{
		{"number", "highlight_duration: 1200\nclear_highlight: false\n", 1200, false},
		{"quoted number", "highlight_duration: \"300\"\n", 300, true},
		{"not a number", "highlight_duration: abc\n", DefaultHighlightDuration, true},
		{"negative", "highlight_duration: -4\n", DefaultHighlightDuration, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			s, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, tt.want, s.Snapshot().HighlightDuration)
			assert.Equal(t, tt.clear, s.ClearHighlight())
		})
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("highlight_duration: [\n"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("YANKHL_HIGHLIGHT_DURATION", "750")

	s, _ := load(t)

	assert.Equal(t, 750, s.Snapshot().HighlightDuration)
}

func TestParseHighlightDuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"500", 500, true},
		{" 1200 ", 1200, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"-5", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseHighlightDuration(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetHighlightDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		invalid bool
	}{
		{"1200", 1200, false},
		{"abc", DefaultHighlightDuration, true},
		{"", DefaultHighlightDuration, true},
		{"0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, path := load(t)

			got, err := s.SetHighlightDuration(tt.input)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidDuration)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, s.Snapshot().HighlightDuration)

			reloaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reloaded.Snapshot().HighlightDuration, "persisted")
		})
	}
}

func TestSetClearHighlight(t *testing.T) {
	s, path := load(t)

	require.NoError(t, s.SetClearHighlight(false))
	assert.False(t, s.ClearHighlight())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.ClearHighlight())
}

func TestWatchReloadsOnWrite(t *testing.T) {
	s, path := load(t)

	changes := make(chan Settings, 8)
	s.Watch(func(settings Settings) { changes <- settings })

	require.NoError(t, os.WriteFile(path, []byte("highlight_duration: 900\nclear_highlight: true\n"), 0o644))

	require.Eventually(t, func() bool {
		select {
		case got := <-changes:
			return got.HighlightDuration == 900
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 900, s.Snapshot().HighlightDuration)
}

func TestSaveRewritesFile(t *testing.T) {
	s, path := load(t)
	require.NoError(t, os.WriteFile(path, []byte("theme: dracula\n"), 0o644))

	require.NoError(t, s.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}
