// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate the task file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := app.loadTaskfile()
			if err != nil {
				app.renderIssue(err)
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s is valid (%d tasks)\n", SuccessStyle.Render("✓"), tf.FilePath, len(tf.Tasks))
			return nil
		},
	}
}
