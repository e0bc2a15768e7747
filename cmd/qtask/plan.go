// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/internal/runner"
	"github.com/qcsv/qtask/pkg/taskfile"
)

func newPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [task...]",
		Short: "Show the execution order of tasks, prerequisites first",
		Long: `Show the tasks a run would execute, prerequisites first and each once,
with their steps. A 'task' step is shown as written; it expands inline when
the run reaches it.`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: app.completeTasks,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := app.loadTaskfile()
			if err != nil {
				return err
			}
			plan, err := runner.New(tf, nil, nil).Plan(args...)
			if err != nil {
				explained := explainRunError(err, args)
				return &ExitError{Code: runner.ExitCodeFor(err), Err: explained}
			}
			fmt.Fprint(app.stdout, renderPlan(plan))
			return nil
		},
	}
}

func renderPlan(plan []*taskfile.Task) string {
	var sb strings.Builder
	for i, t := range plan {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, TaskStyle.Render(string(t.Name)))
		if len(t.Steps) == 0 {
			sb.WriteString("     " + StepStyle.Render("(no steps)") + "\n")
		}
		for _, s := range t.Steps {
			sb.WriteString("     " + StepStyle.Render(s.String()) + "\n")
		}
	}
	return sb.String()
}
