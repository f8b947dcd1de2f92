package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/quotes"
	"github.com/rezmoss/focuscli/internal/tui"
)

var (
	// dataDir holds config.json, log.csv, quotes.json and log.log.
	dataDir string
	// verbose enables debug logging.
	verbose bool
	// initialTask pre-fills the task input.
	initialTask string
	// version is the application version.
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "focuscli",
	Short: "A focus session timer with obstacle tracking and daily streaks.",
	Long: `focuscli runs a countdown focus session on a named task. Interruptions
("obstacles") pause the countdown and are tracked. Completed sessions are
logged to log.csv together with two habit flags, and feed a daily streak.

Run without a subcommand to open the interactive timer.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimer(cmd.Context())
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", ".", "data directory for config.json, log.csv and quotes.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&initialTask, "task", "t", "", "task to pre-fill in the timer")
}

func runTimer(ctx context.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := quotes.Load(a.fs, a.dir)
	if err != nil {
		a.logger.Error("Failed to load quotes file", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changes, err := a.journal.Watch(ctx)
	if err != nil {
		a.logger.Warn("Log file changes will not be picked up", zap.Error(err))
		changes = nil
	}

	// An invalid config.json stays untouched until the user fixes it.
	m := tui.New(tui.Config{
		Clock:           a.clock,
		Journal:         a.journal,
		Settings:        a.settings,
		Store:           a.store,
		SettingsInvalid: a.settingsErr != nil,
		Quotes:          quotes.NewDeck(list, nil),
		Logger:          a.logger,
		Bell:            os.Stdout,
		Changes:         changes,
		Theme:           tui.ResolveTheme(a.settings.Theme, termenv.NewOutput(os.Stdout)),
		Task:            initialTask,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		a.logger.Error("Timer exited with error", zap.Error(err))
		return fmt.Errorf("run timer: %w", err)
	}
	return nil
}
