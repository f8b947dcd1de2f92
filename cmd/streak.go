package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/journal"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current daily streak and today's completed sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		now := a.clock.Now()
		var streak, today int
		entries, err := a.journal.Entries()
		if err != nil {
			// Same as the timer screen: an unreadable log counts as nothing done.
			a.logger.Warn("Could not read log file", zap.Error(err))
		} else {
			streak = journal.Streak(entries, now)
			today = journal.CountOn(entries, now)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🔥 Streak: %d days\n", streak)
		fmt.Fprintf(out, "Completed Today: %d\n", today)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streakCmd)
}
