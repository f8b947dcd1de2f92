package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the effective settings, or change them with
"config set key=value". Values are validated before they are saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", a.store.Path())
		for _, k := range settings.Keys() {
			v, err := a.settings.Get(k)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s=%s\n", k, v)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a single setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		v, err := a.settings.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change one or more settings",
	Example: `  focuscli config set session_duration_minutes=25
  focuscli config set theme=dark status_indicator_enabled=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		err = a.store.Update(func(st *settings.Settings) error {
			for _, arg := range args {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid setting %q, use key=value", arg)
				}
				if err := st.Set(strings.TrimSpace(parts[0]), parts[1]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		a.logger.Info("Settings saved", zap.Strings("changes", args))
		for _, arg := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "Config updated: %s\n", arg)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
