// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/qcsv/qtask/internal/uroot"
)

// VirtualRuntime executes command lines using mvdan/sh with optional u-root utilities
type VirtualRuntime struct {
	// EnableUrootUtils routes cat, cp, mkdir, mv, rm and touch to the
	// in-process u-root implementations.
	EnableUrootUtils bool

	builtins *uroot.Registry
}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime(enableUroot bool) *VirtualRuntime {
	return &VirtualRuntime{
		EnableUrootUtils: enableUroot,
		builtins:         uroot.NewDefaultRegistry(),
	}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available always returns true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate checks that the command line parses.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Command) == "" {
		return ErrEmptyCommand
	}
	if _, err := parse(ctx.Command); err != nil {
		return fmt.Errorf("command syntax error: %w", err)
	}
	return nil
}

// Execute interprets the command line in-process.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	prog, err := parse(ctx.Command)
	if err != nil {
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to parse command: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(processEnv(ctx.Env)...)),
		interp.StdIO(ctx.Stdin, ctx.Stdout, ctx.Stderr),
	}
	if ctx.Dir != "" {
		opts = append(opts, interp.Dir(ctx.Dir))
	}
	if r.EnableUrootUtils && r.builtins != nil {
		opts = append(opts, interp.ExecHandlers(r.builtins.ExecHandler))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	if err := runner.Run(execCtx, prog); err != nil {
		if execCtx.Err() != nil {
			return NewErrorResult(ExitFailure, fmt.Errorf("command interrupted: %w", execCtx.Err()))
		}
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(ExitCode(exitStatus))
		}
		return NewErrorResult(ExitFailure, fmt.Errorf("command execution failed: %w", err))
	}
	return NewSuccessResult()
}

func parse(command string) (*syntax.File, error) {
	return syntax.NewParser().Parse(strings.NewReader(command), "")
}
