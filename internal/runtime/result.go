// SPDX-License-Identifier: MPL-2.0

package runtime

// Result contains the outcome of executing one command line.
type Result struct {
	// ExitCode is the command's exit status.
	ExitCode ExitCode
	// Error is set when the command could not be run at all (parse failure,
	// missing shell, cancelled context). A command that ran and exited
	// non-zero has a nil Error.
	Error error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code.Normalize()}
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}
