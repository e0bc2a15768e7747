// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/internal/runner"
	"github.com/qcsv/qtask/internal/watch"
	"github.com/qcsv/qtask/pkg/taskfile"
)

// defaultWatchPatterns select the library sources; generated docs and
// build outputs never match, so a task cannot retrigger itself.
var defaultWatchPatterns = []string{"**/*.py"}

type watchFlagValues struct {
	run      runFlagValues
	patterns []string
	ignore   []string
	debounce time.Duration
}

func newWatchCommand(app *App) *cobra.Command {
	var flags watchFlagValues
	cmd := &cobra.Command{
		Use:   "watch <task>",
		Short: "Run a task, then run it again whenever matching files change",
		Example: `  qtask watch docs
  qtask watch pep8 --pattern '*.py' --debounce 1s`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: app.completeTasks,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.watchTask(cmd.Context(), &flags, args[0])
		},
	}
	cmd.Flags().StringSliceVar(&flags.patterns, "pattern", nil, "glob of files that trigger a run, relative to the task file (default **/*.py)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "additional globs to ignore")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before a run starts")
	cmd.Flags().StringVar(&flags.run.runtime, "runtime", "", "runtime for run steps: native or virtual (default from config)")
	return cmd
}

func (a *App) watchTask(ctx context.Context, flags *watchFlagValues, name string) error {
	tf, err := a.loadTaskfile()
	if err != nil {
		return err
	}
	if _, err := tf.Lookup(taskfile.TaskName(name)); err != nil {
		return &ExitError{Code: runner.ExitCodeFor(err), Err: explainRunError(err, []string{name})}
	}

	patterns := flags.patterns
	if len(patterns) == 0 {
		patterns = append(slices.Clone(defaultWatchPatterns), filepath.Base(tf.FilePath))
	}

	rerun := func(ctx context.Context) error {
		return a.runTasks(ctx, &flags.run, []string{name})
	}

	fmt.Fprintf(a.stderr, "%s initial run of %s\n", SubtitleStyle.Render("→"), TaskStyle.Render(name))
	if err := rerun(ctx); err != nil {
		fmt.Fprintf(a.stderr, "%s %v\n", WarningStyle.Render("!"), err)
	}

	w, err := watch.New(watch.Config{
		Dir:      workDirOf(tf),
		Patterns: patterns,
		Ignore:   flags.ignore,
		Debounce: flags.debounce,
		Stderr:   a.stderr,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.stderr, "\n%s %d change(s), running %s\n", SubtitleStyle.Render("→"), len(changed), TaskStyle.Render(name))
			return rerun(ctx)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Fprintf(a.stderr, "%s watching %s (Ctrl+C to stop)\n", SubtitleStyle.Render("→"), w.Dir())
	return w.Run(ctx)
}
