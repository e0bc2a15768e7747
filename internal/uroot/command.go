// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"fmt"
)

type (
	// Command is a utility that can stand in for a host binary.
	Command interface {
		// Name returns the command name (e.g., "cp", "rm").
		Name() string
		// Run executes the command. args[0] is the command name and
		// args[1:] are its arguments.
		Run(ctx context.Context, args []string) error
		// SupportedFlags returns the flags the implementation understands.
		// Unknown flags are left to the implementation to reject or ignore.
		SupportedFlags() []FlagInfo
	}

	// FlagInfo describes a supported flag.
	FlagInfo struct {
		// Name is the flag name without dashes.
		Name string
		// Description explains what the flag does.
		Description string
		// TakesValue indicates if the flag requires a value.
		TakesValue bool
	}
)

// wrapError prefixes err with the [uroot] marker and the command name.
func wrapError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[uroot] %s: %w", cmdName, err)
}
