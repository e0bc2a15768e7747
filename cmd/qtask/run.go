// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/internal/issue"
	"github.com/qcsv/qtask/internal/runner"
	"github.com/qcsv/qtask/internal/runtime"
	"github.com/qcsv/qtask/internal/vcs"
	"github.com/qcsv/qtask/pkg/taskfile"
)

type (
	runFlagValues struct {
		dryRun  bool
		runtime string
	}

	// cliReporter prints the task and step trail to stderr in verbose mode.
	cliReporter struct {
		w       io.Writer
		verbose bool
	}
)

func newRunCommand(app *App) *cobra.Command {
	var flags runFlagValues
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks after their prerequisites (the default task when none is named)",
		Example: `  qtask run docs
  qtask run clean dev-install
  qtask run --runtime virtual clean`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: app.completeTasks,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTasks(cmd.Context(), &flags, args)
		},
	}
	addRunFlags(cmd, &flags)
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlagValues) {
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the steps that would run without running them")
	cmd.Flags().StringVar(&flags.runtime, "runtime", "", "runtime for run steps: native or virtual (default from config)")
}

// runTasks runs names (or the default task) and converts a failure into an
// ExitError carrying the process exit status.
func (a *App) runTasks(ctx context.Context, flags *runFlagValues, names []string) error {
	tf, err := a.loadTaskfile()
	if err != nil {
		return err
	}
	rt, err := a.runtimeFor(flags.runtime)
	if err != nil {
		return err
	}

	pusher := a.NewPusher(workDirOf(tf))
	if gp, ok := pusher.(*vcs.GitPusher); ok && a.flags.verbose {
		gp.Progress = a.stderr
	}

	r := runner.New(tf, rt, pusher)
	r.LookupEnv = a.LookupEnv
	r.Stdin, r.Stdout, r.Stderr = a.stdin, a.stdout, a.stderr
	r.DryRun = flags.dryRun
	r.Reporter = &cliReporter{w: a.stderr, verbose: a.flags.verbose}

	result, err := r.Run(ctx, names...)
	if err == nil {
		return nil
	}
	explained := explainRunError(err, names)
	a.renderIssue(explained)
	return &ExitError{Code: result.ExitCode, Err: explained}
}

// explainRunError attaches suggestions and a catalogue entry to a run error.
// The message of the underlying error is kept intact.
func explainRunError(err error, names []string) error {
	var (
		precondErr *runner.PreconditionError
		pushErr    *vcs.PushError
		stepErr    *runner.StepError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, taskfile.ErrNoSuchTarget):
		return issue.Wrap(err, "run", strings.Join(names, " "),
			"Run 'qtask list' to see the declared tasks",
		).WithIssue(issue.NoSuchTargetId)
	case errors.Is(err, runner.ErrNoDefault):
		return issue.Wrap(err, "run", "",
			"Name a task: qtask <task>",
			"Or declare one with default: \"<task>\" in the task file",
		).WithIssue(issue.NoSuchTargetId)
	case errors.As(err, &precondErr):
		return issue.Wrap(err, "run task", string(precondErr.Task),
			fmt.Sprintf("Set %s before running %s", precondErr.Variable, precondErr.Task),
		).WithIssue(issue.PreconditionFailedId)
	case errors.As(err, &pushErr):
		return issue.Wrap(err, "push to", pushErr.Remote,
			"Check that the remote exists: git remote -v",
			"Check your SSH agent, or set GITHUB_TOKEN for https remotes",
		).WithIssue(issue.PushFailedId)
	case errors.Is(err, runtime.ErrNoShell):
		return issue.Wrap(err, "run task", "",
			"Install a POSIX shell or use --runtime virtual",
		).WithIssue(issue.ShellNotFoundId)
	case errors.As(err, &stepErr):
		return issue.Wrap(err, "run task", string(stepErr.Task),
			"Re-run with --verbose to see the step trail",
			"Use 'qtask plan "+string(stepErr.Task)+"' to see every step",
		).WithIssue(issue.StepFailedId)
	default:
		return err
	}
}

// renderIssue prints the catalogue entry attached to err in verbose mode.
func (a *App) renderIssue(err error) {
	if !a.flags.verbose {
		return
	}
	fmt.Fprintln(a.stderr, formatErrorForDisplay(err, true))
	iss := issue.IssueOf(err)
	if iss == nil {
		return
	}
	rendered, renderErr := iss.Render(string(a.settings().UI.ColorScheme))
	if renderErr != nil {
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// completeTasks completes task names from the task file.
func (a *App) completeTasks(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if err := a.setup(cmd.Context()); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tf, err := a.loadTaskfile()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	completions := make([]string, 0, len(tf.Tasks))
	for _, t := range tf.Tasks {
		if t.Description != "" {
			completions = append(completions, string(t.Name)+"\t"+t.Description)
			continue
		}
		completions = append(completions, string(t.Name))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func (r *cliReporter) TaskStarted(task taskfile.TaskName, depth int) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.w, "%s%s %s\n", strings.Repeat("  ", depth), SubtitleStyle.Render("→"), TaskStyle.Render(string(task)))
}

func (r *cliReporter) StepStarted(_ taskfile.TaskName, _ int, step taskfile.Step) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.w, "    %s\n", StepStyle.Render("$ "+step.String()))
}

func (r *cliReporter) TaskFinished(task taskfile.TaskName, err error) {
	if !r.verbose {
		return
	}
	if err != nil {
		fmt.Fprintf(r.w, "%s %s\n", ErrorStyle.Render("✗"), task)
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", SuccessStyle.Render("✓"), task)
}
