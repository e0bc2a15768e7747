// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the qtask configuration",
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				source := "defaults and environment"
				if app.cfgPath != "" {
					source = app.cfgPath
				}
				fmt.Fprintf(app.stdout, "// effective configuration from %s\n", source)
				fmt.Fprint(app.stdout, config.GenerateCUE(app.settings()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := app.flags.configPath
				if path == "" {
					var err error
					if path, err = config.FilePath(""); err != nil {
						return err
					}
				}
				fmt.Fprintln(app.stdout, path)
				if _, err := os.Stat(path); err != nil {
					fmt.Fprintln(app.stderr, SubtitleStyle.Render("(file does not exist; run 'qtask config init')"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration file if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, written, err := config.CreateDefaultConfig("")
				if err != nil {
					return err
				}
				if !written {
					fmt.Fprintf(app.stdout, "%s %s already exists\n", WarningStyle.Render("!"), path)
					return nil
				}
				fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
				return nil
			},
		},
	)
	return configCmd
}
