// SPDX-License-Identifier: MPL-2.0

package runner

import "github.com/qcsv/qtask/pkg/taskfile"

type (
	// Reporter observes a run. Calls happen on the goroutine executing
	// the run, in execution order.
	Reporter interface {
		// TaskStarted is called before the first step of a task. depth is
		// 0 for planned tasks and grows by one per enclosing task step.
		TaskStarted(task taskfile.TaskName, depth int)
		// StepStarted is called before each step.
		StepStarted(task taskfile.TaskName, index int, step taskfile.Step)
		// TaskFinished is called after the last step, or with the error
		// that stopped the task.
		TaskFinished(task taskfile.TaskName, err error)
	}

	nopReporter struct{}
)

func (nopReporter) TaskStarted(taskfile.TaskName, int)                {}
func (nopReporter) StepStarted(taskfile.TaskName, int, taskfile.Step) {}
func (nopReporter) TaskFinished(taskfile.TaskName, error)             {}
