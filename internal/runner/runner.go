// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/qcsv/qtask/internal/runtime"
	"github.com/qcsv/qtask/internal/vcs"
	"github.com/qcsv/qtask/pkg/taskfile"
)

type (
	// Runner executes tasks from one task file.
	Runner struct {
		Taskfile *taskfile.Taskfile
		// Runtime executes run steps.
		Runtime runtime.Runtime
		// Pusher executes push steps.
		Pusher vcs.Pusher
		// LookupEnv resolves require_env steps; defaults to os.LookupEnv.
		LookupEnv func(string) (string, bool)

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// DryRun prints each step instead of executing it.
		DryRun bool
		// Reporter observes the run; may be nil.
		Reporter Reporter
	}

	// Result summarizes a run.
	Result struct {
		// ExitCode is 0 on success or the status of the failing step.
		ExitCode runtime.ExitCode
		// Tasks lists every task whose steps started, in order, including
		// tasks entered through task steps.
		Tasks []taskfile.TaskName
	}

	// invocation is the state of one Run call.
	invocation struct {
		r      *Runner
		done   map[taskfile.TaskName]bool
		active []taskfile.TaskName
		result *Result
	}
)

// New creates a Runner for tf with the given runtime and pusher, wired to
// the process's standard streams.
func New(tf *taskfile.Taskfile, rt runtime.Runtime, pusher vcs.Pusher) *Runner {
	return &Runner{
		Taskfile: tf,
		Runtime:  rt,
		Pusher:   pusher,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Targets resolves the requested target names, substituting the default task
// when none is given. Every name is checked before any is returned.
func (r *Runner) Targets(names ...string) ([]taskfile.TaskName, error) {
	if len(names) == 0 {
		if r.Taskfile.Default == "" {
			return nil, ErrNoDefault
		}
		names = []string{string(r.Taskfile.Default)}
	}
	targets := make([]taskfile.TaskName, 0, len(names))
	for _, n := range names {
		name := taskfile.TaskName(n)
		if _, err := r.Taskfile.Lookup(name); err != nil {
			return nil, err
		}
		targets = append(targets, name)
	}
	return targets, nil
}

// Plan returns the tasks a run of targets executes directly, prerequisites
// first, each task once. Tasks entered through task steps are not listed.
func (r *Runner) Plan(names ...string) ([]*taskfile.Task, error) {
	targets, err := r.Targets(names...)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, len(targets))
	for i, t := range targets {
		nodes[i] = string(t)
	}
	order, err := r.Taskfile.Graph().PlanFor(nodes...)
	if err != nil {
		return nil, err
	}
	plan := make([]*taskfile.Task, 0, len(order))
	for _, n := range order {
		task, err := r.Taskfile.Lookup(taskfile.TaskName(n))
		if err != nil {
			return nil, err
		}
		plan = append(plan, task)
	}
	return plan, nil
}

// Run executes the named tasks (or the default task) after their
// prerequisites. Unknown names fail before anything executes. The returned
// Result is non-nil even on error and carries the exit status the process
// should end with.
func (r *Runner) Run(ctx context.Context, names ...string) (*Result, error) {
	result := &Result{}
	plan, err := r.Plan(names...)
	if err != nil {
		result.ExitCode = ExitCodeFor(err)
		return result, err
	}

	inv := &invocation{r: r, done: make(map[taskfile.TaskName]bool), result: result}
	for _, task := range plan {
		if err := inv.runTask(ctx, task, 0); err != nil {
			result.ExitCode = ExitCodeFor(err)
			return result, err
		}
	}
	return result, nil
}

func (r *Runner) reporter() Reporter {
	if r.Reporter == nil {
		return nopReporter{}
	}
	return r.Reporter
}

func (r *Runner) lookupEnv(name string) (string, bool) {
	if r.LookupEnv != nil {
		return r.LookupEnv(name)
	}
	return os.LookupEnv(name)
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return io.Discard
	}
	return r.Stdout
}

// runTask runs the task's steps once per invocation. Planned tasks go
// through here; task steps call runInline instead.
func (inv *invocation) runTask(ctx context.Context, task *taskfile.Task, depth int) error {
	if inv.done[task.Name] {
		return nil
	}
	if err := inv.runSteps(ctx, task, depth); err != nil {
		return err
	}
	inv.done[task.Name] = true
	return nil
}

// runInline runs the prerequisites of task that have not run yet in this
// invocation, then all of task's steps regardless of whether it ran before.
func (inv *invocation) runInline(ctx context.Context, task *taskfile.Task, depth int) error {
	order, err := inv.r.Taskfile.Graph().PlanFor(string(task.Name))
	if err != nil {
		return err
	}
	for _, n := range order[:len(order)-1] {
		dep, err := inv.r.Taskfile.Lookup(taskfile.TaskName(n))
		if err != nil {
			return err
		}
		if err := inv.runTask(ctx, dep, depth); err != nil {
			return err
		}
	}
	if err := inv.runSteps(ctx, task, depth); err != nil {
		return err
	}
	inv.done[task.Name] = true
	return nil
}

func (inv *invocation) runSteps(ctx context.Context, task *taskfile.Task, depth int) (err error) {
	if slices.Contains(inv.active, task.Name) {
		return fmt.Errorf("%w: %s", ErrRecursion, formatChain(append(slices.Clone(inv.active), task.Name)))
	}
	inv.active = append(inv.active, task.Name)
	defer func() { inv.active = inv.active[:len(inv.active)-1] }()

	rep := inv.r.reporter()
	rep.TaskStarted(task.Name, depth)
	defer func() { rep.TaskFinished(task.Name, err) }()
	inv.result.Tasks = append(inv.result.Tasks, task.Name)

	slog.Debug("task started", "task", task.Name, "steps", len(task.Steps), "depth", depth)
	for i, step := range task.Steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &StepError{Task: task.Name, Index: i, Step: step.String(), ExitCode: ExitInterrupted, Err: ctxErr}
		}
		rep.StepStarted(task.Name, i, step)
		if inv.r.DryRun && step.Kind() != taskfile.StepTask {
			fmt.Fprintf(inv.r.stdout(), "[%s] %s\n", task.Name, step)
			continue
		}
		if err := inv.runStep(ctx, task, i, step, depth); err != nil {
			slog.Debug("step failed", "task", task.Name, "step", i, "error", err)
			return err
		}
	}
	return nil
}

func (inv *invocation) runStep(ctx context.Context, task *taskfile.Task, index int, step taskfile.Step, depth int) error {
	fail := func(code runtime.ExitCode, cause error) error {
		return &StepError{Task: task.Name, Index: index, Step: step.String(), ExitCode: code, Err: cause}
	}
	workDir := task.WorkDir(inv.r.Taskfile.Dir())

	switch step.Kind() {
	case taskfile.StepRun:
		if inv.r.Runtime == nil {
			return fail(runtime.ExitFailure, errors.New("no runtime configured"))
		}
		res := inv.r.Runtime.Execute(&runtime.ExecutionContext{
			Context: ctx,
			Command: step.Run,
			Dir:     workDir,
			Env:     runtime.MergeEnv(inv.r.Taskfile.Env, task.Env),
			Stdin:   inv.r.Stdin,
			Stdout:  inv.r.Stdout,
			Stderr:  inv.r.Stderr,
		})
		if !res.Success() {
			code := res.ExitCode
			if code == 0 {
				code = runtime.ExitFailure
			}
			return fail(code, res.Error)
		}

	case taskfile.StepTask:
		sub, err := inv.r.Taskfile.Lookup(step.Task)
		if err != nil {
			return fail(runtime.ExitFailure, err)
		}
		if err := inv.runInline(ctx, sub, depth+1); err != nil {
			return err
		}

	case taskfile.StepRemove:
		if err := removePaths(workDir, step.Remove); err != nil {
			return fail(runtime.ExitFailure, err)
		}

	case taskfile.StepRequireEnv:
		if v, ok := inv.r.lookupEnv(step.RequireEnv); !ok || v == "" {
			return fail(runtime.ExitFailure, &PreconditionError{Task: task.Name, Variable: step.RequireEnv})
		}

	case taskfile.StepPush:
		if inv.r.Pusher == nil {
			return fail(runtime.ExitFailure, errors.New("no pusher configured"))
		}
		for _, remote := range step.Push.Remotes {
			slog.Info("pushing", "task", task.Name, "remote", remote)
			if err := inv.r.Pusher.Push(ctx, remote, step.Push.Branch); err != nil {
				return fail(runtime.ExitFailure, err)
			}
		}

	default:
		return fail(runtime.ExitFailure, fmt.Errorf("step has %d actions, want exactly one", len(step.Kinds())))
	}
	return nil
}

func formatChain(chain []taskfile.TaskName) string {
	parts := make([]string, len(chain))
	for i, n := range chain {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
