// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// waitDelay bounds how long Execute waits for grandchildren holding the
// output pipes after the shell itself was killed.
const waitDelay = 2 * time.Second

// ErrNoShell is returned when no host shell could be located.
var ErrNoShell = errors.New("no shell found")

// NativeRuntime executes command lines using the system's shell.
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command line
	ShellArgs []string
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether a host shell can be found.
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Validate checks that there is something to run.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Command) == "" {
		return ErrEmptyCommand
	}
	return nil
}

// Execute runs the command line with `<shell> -c`. A command that exits
// non-zero yields its exit status with a nil Result.Error.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	shell, err := r.getShell()
	if err != nil {
		return NewErrorResult(ExitFailure, err)
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	args := append(r.getShellArgs(shell), ctx.Command)
	cmd := exec.CommandContext(execCtx, shell, args...)
	cmd.Dir = ctx.Dir
	cmd.Env = processEnv(ctx.Env)
	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if execCtx.Err() != nil {
			return NewErrorResult(exitCodeOf(err), fmt.Errorf("command interrupted: %w", execCtx.Err()))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return NewErrorResult(ExitNotFound, fmt.Errorf("failed to start shell %s: %w", shell, err))
		}
		return NewErrorResult(ExitFailure, fmt.Errorf("failed to execute command: %w", err))
	}
	return NewSuccessResult()
}

// exitCodeOf extracts a usable exit status from a Run error. A process
// killed by a signal reports -1, which becomes ExitFailure.
func exitCodeOf(err error) ExitCode {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return ExitCode(exitErr.ExitCode()).Normalize()
	}
	return ExitFailure
}

// getShell determines which shell to use
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	switch runtime.GOOS {
	case "windows":
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		return exec.LookPath("cmd")
	default:
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		if bash, err := exec.LookPath("bash"); err == nil {
			return bash, nil
		}
		if sh, err := exec.LookPath("sh"); err == nil {
			return sh, nil
		}
		return "", ErrNoShell
	}
}

// getShellArgs returns the arguments to pass to the shell
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := strings.TrimSuffix(filepath.Base(shell), ".exe")
	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}
