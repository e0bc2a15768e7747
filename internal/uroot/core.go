// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"

	"github.com/u-root/u-root/pkg/core"
	"github.com/u-root/u-root/pkg/core/cat"
	"github.com/u-root/u-root/pkg/core/cp"
	"github.com/u-root/u-root/pkg/core/mkdir"
	"github.com/u-root/u-root/pkg/core/mv"
	"github.com/u-root/u-root/pkg/core/rm"
	"github.com/u-root/u-root/pkg/core/touch"
)

// coreCommand adapts a u-root pkg/core command to Command. A fresh core
// command is built for every invocation since they keep per-run state.
type coreCommand struct {
	name  string
	flags []FlagInfo
	build func() core.Command
}

// Builtins returns the u-root commands available to the virtual runtime.
func Builtins() []Command {
	return []Command{
		&coreCommand{
			name:  "cat",
			build: func() core.Command { return cat.New() },
			flags: []FlagInfo{{Name: "u", Description: "ignored, output is always unbuffered"}},
		},
		&coreCommand{
			name:  "cp",
			build: func() core.Command { return cp.New() },
			flags: []FlagInfo{
				{Name: "r", Description: "copy directories recursively"},
				{Name: "f", Description: "overwrite existing files"},
				{Name: "P", Description: "do not follow symlinks"},
			},
		},
		&coreCommand{
			name:  "mkdir",
			build: func() core.Command { return mkdir.New() },
			flags: []FlagInfo{
				{Name: "p", Description: "create parent directories as needed"},
				{Name: "m", Description: "set file mode", TakesValue: true},
			},
		},
		&coreCommand{
			name:  "mv",
			build: func() core.Command { return mv.New() },
			flags: []FlagInfo{
				{Name: "f", Description: "do not prompt before overwriting"},
				{Name: "n", Description: "do not overwrite an existing file"},
			},
		},
		&coreCommand{
			name:  "rm",
			build: func() core.Command { return rm.New() },
			flags: []FlagInfo{
				{Name: "r", Description: "remove directories and their contents recursively"},
				{Name: "f", Description: "ignore nonexistent files"},
			},
		},
		&coreCommand{
			name:  "touch",
			build: func() core.Command { return touch.New() },
			flags: []FlagInfo{
				{Name: "c", Description: "do not create any files"},
				{Name: "d", Description: "use the given time", TakesValue: true},
			},
		},
	}
}

func (c *coreCommand) Name() string { return c.name }

func (c *coreCommand) SupportedFlags() []FlagInfo { return c.flags }

func (c *coreCommand) Run(ctx context.Context, args []string) error {
	cmd := c.build()
	hc := GetHandlerContext(ctx)
	cmd.SetIO(hc.Stdin, hc.Stdout, hc.Stderr)
	cmd.SetWorkingDir(hc.Dir)
	cmd.SetLookupEnv(hc.LookupEnv)

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}
	return wrapError(c.name, cmd.RunContext(ctx, cmdArgs...))
}
