// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the qtask command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app. Bare arguments are task
// names, so 'qtask docs' is the same as 'qtask run docs'.
func NewRootCommand(app *App) *cobra.Command {
	var runFlags runFlagValues

	rootCmd := &cobra.Command{
		Use:   "qtask [task...]",
		Short: "Release task runner for the qcsv library",
		Long: TitleStyle.Render("qtask") + SubtitleStyle.Render(" - release task runner for the qcsv library") + `

qtask runs named tasks from a qtask.cue (or .yaml / .toml) file. Each task is
an ordered list of steps; prerequisites run first, once per invocation, and
the first failing step stops the run with that step's exit status.

` + SubtitleStyle.Render("Examples:") + `
  qtask init                Write the qcsv release task file
  qtask list                List tasks
  qtask docs                Run the 'docs' task
  qtask plan dev-install    Show what 'dev-install' would run
  qtask run --dry-run pypi  Print the steps of 'pypi' without running them`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: app.completeTasks,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTasks(cmd.Context(), &runFlags, args)
		},
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "print the task and step trail and explain failures")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/qtask/config.cue)")
	pf.StringVarP(&app.flags.file, "file", "f", "", "task file (default is qtask.cue, .yaml, .yml or .toml in the working directory)")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")
	addRunFlags(rootCmd, &runFlags)

	rootCmd.AddCommand(
		newRunCommand(app),
		newListCommand(app),
		newPlanCommand(app),
		newValidateCommand(app),
		newInitCommand(app),
		newWatchCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the failing step, 2 for
// an unknown task, 130 after an interrupt and 1 for other errors.
func Execute() {
	app := NewApp(Dependencies{})
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
