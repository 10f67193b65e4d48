package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ionut-t/yankhighlight/internal/app"
	"github.com/ionut-t/yankhighlight/internal/config"
	"github.com/ionut-t/yankhighlight/internal/logger"
)

var (
	// Version info (set by ldflags)
	version = "dev"

	configPath string
	duration   string
	language   string
	theme      string
	logFile    string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yankhl [files...]",
		Short: "Vi-mode note editor that highlights yanked text",
		Long: `yankhl opens each file in its own pane with vi key bindings. Text you yank
is highlighted for a moment so you can see what went into the register.

Keys:
  ctrl+w   switch pane
  f2       settings
  ctrl+c   quit

Commands:
  :set highlightduration=N   highlight duration in milliseconds
  :set [no]clearhighlight    remove the highlight when the duration ends`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file path (default $XDG_CONFIG_HOME/yankhl/config.yaml)")
	rootCmd.Flags().StringVar(&duration, "duration", "", "highlight duration in milliseconds, saved to the config")
	rootCmd.Flags().StringVar(&language, "language", "", "syntax highlighting language (default from config)")
	rootCmd.Flags().StringVar(&theme, "theme", "", "chroma style name (default from config)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "log file path (default $XDG_CONFIG_HOME/yankhl/yankhl.log)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, files []string) error {
	level := logger.LevelInfo
	if debug {
		level = logger.LevelDebug
	}
	log, closer := logger.New(level, logFile)
	defer closer.Close()

	store, err := config.Load(configPath, config.WithLogger(log))
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("duration") {
		if _, err := store.SetHighlightDuration(duration); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	model, err := app.New(app.Options{
		Files:    files,
		Language: language,
		Theme:    theme,
		Config:   store,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	log.Info("starting", "files", len(files), "config", store.Path())

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
