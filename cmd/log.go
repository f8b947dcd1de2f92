package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/journal"
	"github.com/rezmoss/focuscli/internal/settings"
)

var (
	// clearBackup copies the log before clearing it.
	clearBackup bool
)

// openCommand builds the OS command that opens path in its default app.
var openCommand = func(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Manage the session log (log.csv)",
}

var logPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the session log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()
		fmt.Fprintln(cmd.OutOrStdout(), a.journal.Path())
		return nil
	},
}

var logOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the session log with the system's default application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		exists, err := a.journal.Exists()
		if err != nil {
			return err
		}
		if !exists {
			return journal.ErrNoLog
		}
		if err := openCommand(a.journal.Path()).Run(); err != nil {
			a.logger.Error("Could not open log file", zap.Error(err))
			return fmt.Errorf("could not open file: %w", err)
		}
		return nil
	},
}

var logBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the session log to a timestamped file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		dst, err := a.journal.Backup(a.clock.Now())
		if err != nil {
			return err
		}
		a.logger.Info("Log file backed up", zap.String("path", dst))
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", dst)
		return nil
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the session log, keeping its header row",
	Long: `Clear the session log for a new period. The header row is kept.
Clearing also resets the backup reminder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		now := a.clock.Now()
		out := cmd.OutOrStdout()
		if clearBackup {
			dst, err := a.journal.Backup(now)
			switch {
			case errors.Is(err, journal.ErrNoLog):
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "Backup written to %s\n", dst)
			}
		}
		if err := a.journal.Clear(); err != nil {
			a.logger.Error("Could not clear log file", zap.Error(err))
			return err
		}
		a.logger.Info("Log file content has been cleared, header preserved")

		if a.settingsErr != nil {
			a.logger.Warn("Backup date not saved, settings file needs fixing", zap.Error(a.settingsErr))
		} else if err := a.store.Update(func(st *settings.Settings) error {
			st.MarkBackupPrompted(now)
			return nil
		}); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		fmt.Fprintln(out, "The log file has been cleared. The headers have been preserved.")
		return nil
	},
}

func init() {
	logClearCmd.Flags().BoolVar(&clearBackup, "backup", true, "copy the log to a timestamped file before clearing")
	logCmd.AddCommand(logPathCmd, logOpenCmd, logBackupCmd, logClearCmd)
	rootCmd.AddCommand(logCmd)
}
