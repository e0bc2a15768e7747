// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/pkg/taskfile"
)

// ErrTaskfileExists is returned by init when the target file exists and
// --force is not given.
var ErrTaskfileExists = errors.New("task file already exists")

func newInitCommand(app *App) *cobra.Command {
	var (
		format string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the qcsv release task file",
		Long: `Write a task file with the qcsv release tasks: docs, pypi, pypi-win,
pypi-meta, pep8, push, dev-install, clean and sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := taskfile.Format(format)
			data, err := taskfile.ReleaseTemplate(f)
			if err != nil {
				return err
			}
			wd, err := app.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			path := filepath.Join(wd, f.FileName())
			if _, statErr := os.Stat(path); statErr == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", ErrTaskfileExists, path)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write task file: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(taskfile.FormatCUE), "task file format: cue, yaml or toml")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing task file")
	return cmd
}
