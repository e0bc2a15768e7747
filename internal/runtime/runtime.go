// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

const (
	// RuntimeTypeNative runs command lines through the host shell.
	RuntimeTypeNative RuntimeType = "native"
	// RuntimeTypeVirtual runs command lines in the embedded mvdan/sh interpreter.
	RuntimeTypeVirtual RuntimeType = "virtual"
)

var (
	// ErrInvalidRuntimeType is the sentinel error wrapped by InvalidRuntimeTypeError.
	ErrInvalidRuntimeType = errors.New("invalid runtime type")
	// ErrRuntimeNotAvailable is returned when a registered runtime cannot run on this host.
	ErrRuntimeNotAvailable = errors.New("runtime not available")
	// ErrEmptyCommand is returned by Validate for a blank command line.
	ErrEmptyCommand = errors.New("command line is empty")
)

type (
	// ExecutionContext contains everything needed to execute one command line.
	ExecutionContext struct {
		// Context cancels the running command.
		Context context.Context
		// Command is the shell command line.
		Command string
		// Dir is the working directory; empty means the process's.
		Dir string
		// Env holds variables added on top of the inherited environment.
		Env map[string]string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Runtime executes command lines.
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Execute runs the command line and reports how it ended.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is usable on the current host.
		Available() bool
		// Validate checks if the command line can be executed by this runtime.
		Validate(ctx *ExecutionContext) error
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// InvalidRuntimeTypeError is returned when a RuntimeType is not one of
	// the defined types.
	InvalidRuntimeTypeError struct {
		Value RuntimeType
	}

	// Registry holds the available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context wired to the process's
// standard streams.
func NewExecutionContext(ctx context.Context, command string) *ExecutionContext {
	return &ExecutionContext{
		Context: ctx,
		Command: command,
		Env:     make(map[string]string),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Error implements the error interface.
func (e *InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("invalid runtime type %q (valid: %s, %s)", e.Value, RuntimeTypeNative, RuntimeTypeVirtual)
}

// Unwrap returns ErrInvalidRuntimeType so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeTypeError) Unwrap() error { return ErrInvalidRuntimeType }

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// IsValid returns whether the RuntimeType is one of the defined types,
// and a list of validation errors if it is not.
func (t RuntimeType) IsValid() (bool, []error) {
	switch t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidRuntimeTypeError{Value: t}}
	}
}

// NewRegistry creates an empty runtime registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[RuntimeType]Runtime)}
}

// Register adds a runtime to the registry
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns the runtime registered for typ.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	if ok, errs := typ.IsValid(); !ok {
		return nil, errs[0]
	}
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", ErrRuntimeNotAvailable, typ)
	}
	if !rt.Available() {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeNotAvailable, typ)
	}
	return rt, nil
}

// Available returns the registered runtime types usable on this host, sorted.
func (r *Registry) Available() []RuntimeType {
	var types []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			types = append(types, typ)
		}
	}
	slices.Sort(types)
	return types
}

// Execute runs the command line with the runtime registered for typ.
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(ExitFailure, err)
	}
	if err := rt.Validate(ctx); err != nil {
		return NewErrorResult(ExitFailure, err)
	}
	return rt.Execute(ctx)
}
