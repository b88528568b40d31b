package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photocollage/pkg/settings"
)

// settingsCommand creates the settings management command.
func (c *CLI) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and edit remembered preferences",
		Long: `Settings are remembered between runs in a YAML (or TOML, by extension)
file. Set ` + settingsEnv + ` to use a different file.`,
	}

	cmd.AddCommand(c.settingsShowCommand())
	cmd.AddCommand(c.settingsPathCommand())
	cmd.AddCommand(c.settingsSetCommand())
	cmd.AddCommand(c.settingsUnsetCommand())

	return cmd
}

func (c *CLI) settingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printTitle(out, c.Settings.Path())
			keys := c.Settings.Keys()
			if len(keys) == 0 {
				printInfo(out, "No settings stored yet")
				return nil
			}
			printKeyValues(out, keys, func(k string) string {
				v, _ := c.Settings.Get(k)
				return fmt.Sprint(v)
			})
			return nil
		},
	}
}

func (c *CLI) settingsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.Settings.Path())
			return nil
		},
	}
}

func (c *CLI) settingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Store a setting",
		Example: "  photocollage settings set render.border 0.02\n  photocollage settings set render.color '#202020'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings.ParseValue(args[1])
			c.Settings.Set(args[0], v)
			printSuccess(cmd.OutOrStdout(), "%s = %v", args[0], v)
			return nil
		},
	}
}

func (c *CLI) settingsUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.Settings.Delete(args[0]) {
				printWarning(cmd.OutOrStdout(), "%s is not set", args[0])
				return nil
			}
			printSuccess(cmd.OutOrStdout(), "Removed %s", args[0])
			return nil
		},
	}
}
