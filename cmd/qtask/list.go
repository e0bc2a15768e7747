// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qcsv/qtask/pkg/taskfile"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks in the task file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := app.loadTaskfile()
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, renderTaskList(tf))
			return nil
		},
	}
}

// renderTaskList renders one line per task in declaration order: the name,
// a default marker, the description and the prerequisites.
func renderTaskList(tf *taskfile.Taskfile) string {
	width := 0
	for _, t := range tf.Tasks {
		width = max(width, len(t.Name))
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Tasks in "+tf.FilePath) + "\n\n")
	for _, t := range tf.Tasks {
		pad := strings.Repeat(" ", width-len(t.Name))
		sb.WriteString("  " + TaskStyle.Render(string(t.Name)) + pad)
		if t.Name == tf.Default {
			sb.WriteString(" " + defaultMarkStyle.Render("(default)"))
		}
		if t.Description != "" {
			sb.WriteString("  " + SubtitleStyle.Render(t.Description))
		}
		if len(t.Deps) > 0 {
			deps := make([]string, len(t.Deps))
			for i, d := range t.Deps {
				deps[i] = string(d)
			}
			sb.WriteString("  " + StepStyle.Render("[after "+strings.Join(deps, ", ")+"]"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
