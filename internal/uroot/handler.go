// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"fmt"
	"io"

	"mvdan.cc/sh/v3/interp"
)

type (
	// HandlerContext is the I/O and environment a command runs with.
	// Inside the virtual shell it is derived from interp.HandlerCtx.
	HandlerContext struct {
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
		Dir       string
		LookupEnv func(string) (string, bool)
	}

	handlerContextKey struct{}
)

// WithHandlerContext stores hc in ctx. Commands run outside an interpreter
// (in tests, for instance) read their I/O from it.
func WithHandlerContext(ctx context.Context, hc *HandlerContext) context.Context {
	return context.WithValue(ctx, handlerContextKey{}, hc)
}

// GetHandlerContext returns the HandlerContext stored by WithHandlerContext,
// or one built from the shell interpreter's handler context.
func GetHandlerContext(ctx context.Context) *HandlerContext {
	if hc, ok := ctx.Value(handlerContextKey{}).(*HandlerContext); ok {
		return hc
	}
	hc := interp.HandlerCtx(ctx)
	return &HandlerContext{
		Stdin:  hc.Stdin,
		Stdout: hc.Stdout,
		Stderr: hc.Stderr,
		Dir:    hc.Dir,
		LookupEnv: func(name string) (string, bool) {
			v := hc.Env.Get(name)
			return v.Str, v.Set
		},
	}
}

// ExecHandler returns interp middleware that runs registered commands
// in-process and passes everything else to next. A failing built-in prints
// its error to the shell's stderr and exits with status 1, the way a host
// binary would; it never falls back to a host binary of the same name.
func (r *Registry) ExecHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		cmd, ok := r.Lookup(args[0])
		if !ok {
			return next(ctx, args)
		}
		if err := cmd.Run(ctx, args); err != nil {
			hc := GetHandlerContext(ctx)
			if hc.Stderr != nil {
				fmt.Fprintln(hc.Stderr, err)
			}
			return interp.ExitStatus(1)
		}
		return nil
	}
}
