package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultHighlightDuration is the highlight duration in milliseconds used when
// none is configured or the configured value is not a number.
const DefaultHighlightDuration = 500

const (
	keyHighlightDuration = "highlight_duration"
	keyClearHighlight    = "clear_highlight"
	keyTheme             = "theme"
	keyLanguage          = "language"
)

// ErrInvalidDuration is returned when a highlight duration is not a
// non-negative integer. The default duration is stored instead.
var ErrInvalidDuration = errors.New("highlight duration must be a non-negative integer")

// Settings is the persisted configuration.
type Settings struct {
	HighlightDuration int    `mapstructure:"highlight_duration"`
	ClearHighlight    bool   `mapstructure:"clear_highlight"`
	Theme             string `mapstructure:"theme"`
	Language          string `mapstructure:"language"`
}

// Store holds the settings loaded from a yaml file and YANKHL_* environment
// variables. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	v        *viper.Viper
	path     string
	settings Settings
	logger   *slog.Logger
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/yankhl/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "yankhl", "config.yaml")
}

// Load reads the settings at path, creating the file with defaults when it
// does not exist. An empty path means DefaultPath.
func Load(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("YANKHL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	s := &Store{
		v:      v,
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := s.createDefaultConfig(); err != nil {
			return nil, err
		}
	}

	settings, err := decode(v)
	if err != nil {
		return nil, err
	}
	s.settings = settings

	return s, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault(keyHighlightDuration, DefaultHighlightDuration)
	v.SetDefault(keyClearHighlight, true)
	v.SetDefault(keyTheme, "catppuccin-mocha")
	v.SetDefault(keyLanguage, "markdown")
}

func (s *Store) createDefaultConfig() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("error writing default config: %w", err)
	}
	s.logger.Info("created default config", "path", s.path)
	return nil
}

// decode unmarshals the settings. A highlight duration that is not a number
// decodes as the default.
func decode(v *viper.Viper) (Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(durationHook)); err != nil {
		return Settings{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return settings, nil
}

func durationHook(_, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	if n, ok := ParseHighlightDuration(fmt.Sprint(data)); ok {
		return n, nil
	}
	return DefaultHighlightDuration, nil
}

// ParseHighlightDuration parses a duration in milliseconds. Surrounding spaces
// are ignored. Anything but a non-negative base-10 integer is rejected.
func ParseHighlightDuration(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// HighlightDuration returns how long a yank stays highlighted.
func (s *Store) HighlightDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.settings.HighlightDuration) * time.Millisecond
}

// ClearHighlight reports whether the highlight is removed when the duration
// expires.
func (s *Store) ClearHighlight() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.ClearHighlight
}

// SetHighlightDuration stores and persists the duration typed by the user.
// Invalid input stores the default and returns ErrInvalidDuration along with
// the value that was stored.
func (s *Store) SetHighlightDuration(input string) (int, error) {
	duration, ok := ParseHighlightDuration(input)
	if !ok {
		duration = DefaultHighlightDuration
	}

	s.mu.Lock()
	s.settings.HighlightDuration = duration
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return duration, err
	}
	if !ok {
		return duration, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}
	return duration, nil
}

// SetClearHighlight stores and persists whether highlights are removed.
func (s *Store) SetClearHighlight(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.ClearHighlight = enabled
	return s.save()
}

// Save writes the current settings to the config file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes through a separate viper instance so values set here never
// shadow the file or the environment on the next reload.
func (s *Store) save() error {
	w := viper.New()
	w.SetConfigType("yaml")
	w.Set(keyHighlightDuration, s.settings.HighlightDuration)
	w.Set(keyClearHighlight, s.settings.ClearHighlight)
	w.Set(keyTheme, s.settings.Theme)
	w.Set(keyLanguage, s.settings.Language)

	if err := w.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}

// Watch reloads the settings whenever the config file changes on disk and
// calls onChange with the new settings. onChange runs on the watcher
// goroutine.
func (s *Store) Watch(onChange func(Settings)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		s.mu.Lock()
		settings, err := decode(s.v)
		if err == nil {
			s.settings = settings
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn("failed to reload config", "path", e.Name, "error", err)
			return
		}

		s.logger.Debug("config reloaded", "path", e.Name)
		if onChange != nil {
			onChange(settings)
		}
	})
	s.v.WatchConfig()
}
