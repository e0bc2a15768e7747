// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/qcsv/qtask/internal/runtime"
	"github.com/qcsv/qtask/pkg/taskfile"
)

const (
	// ExitUsage is the exit status for a run that named no valid target.
	ExitUsage runtime.ExitCode = 2
	// ExitInterrupted is the exit status of a run stopped by cancellation,
	// matching a shell killed by SIGINT.
	ExitInterrupted runtime.ExitCode = 130
)

var (
	// ErrNoDefault is returned when no target is given and the task file
	// declares no default task.
	ErrNoDefault = errors.New("no target given and no default task declared")
	// ErrPrecondition is the sentinel error wrapped by PreconditionError.
	ErrPrecondition = errors.New("precondition failed")
	// ErrRecursion is returned when a task is reached again while it is
	// still running.
	ErrRecursion = errors.New("task invokes itself")
)

type (
	// PreconditionError is returned when a require_env step finds its
	// variable unset or empty. No later step of the run is executed.
	PreconditionError struct {
		Task     taskfile.TaskName
		Variable string
	}

	// StepError reports the step that stopped a run.
	StepError struct {
		Task taskfile.TaskName
		// Index is the zero-based position of the step within its task.
		Index int
		// Step is the step as rendered by taskfile.Step.String.
		Step string
		// ExitCode is the status the run ends with.
		ExitCode runtime.ExitCode
		// Err is the cause when the step did not simply exit non-zero.
		Err error
	}
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("task %s: environment variable %s is not set", e.Task, e.Variable)
}

// Unwrap returns ErrPrecondition so callers can use errors.Is for programmatic detection.
func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %s, step %d (%s): %v", e.Task, e.Index+1, e.Step, e.Err)
	}
	return fmt.Sprintf("task %s, step %d (%s): exit status %d", e.Task, e.Index+1, e.Step, e.ExitCode)
}

// Unwrap returns the underlying cause, if any.
func (e *StepError) Unwrap() error { return e.Err }

// ExitCodeFor maps a run error to the process exit status: a failing
// command's own status, ExitUsage for unknown targets, ExitInterrupted for
// cancellation, and 1 for everything else.
func ExitCodeFor(err error) runtime.ExitCode {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode != 0 {
		return stepErr.ExitCode
	}
	if errors.Is(err, taskfile.ErrNoSuchTarget) || errors.Is(err, ErrNoDefault) {
		return ExitUsage
	}
	return runtime.ExitFailure
}
