package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "yankhl.log")

	log, closer := New(LevelInfo, path)
	log.Debug("hidden")
	log.Info("yank highlighted", "view", "v1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"msg":"yank highlighted"`)
	assert.Contains(t, string(data), `"view":"v1"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "INFO"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.slog().String())
	}
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
