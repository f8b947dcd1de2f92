package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezmoss/focuscli/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for the last 14 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		exists, err := a.journal.Exists()
		if err != nil {
			return err
		}
		if !exists {
			fmt.Fprintln(out, "No data to display.")
			fmt.Fprintln(out, "Log file does not exist or is empty.")
			return nil
		}
		entries, err := a.journal.Entries()
		if err != nil {
			return fmt.Errorf("read %s: %w", a.journal.Path(), err)
		}
		stats.Render(out, stats.Compute(entries, a.clock.Now(), a.settings.SessionDurationMinutes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
