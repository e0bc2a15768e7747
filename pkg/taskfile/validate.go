// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qcsv/qtask/internal/dag"
	"github.com/qcsv/qtask/pkg/cueutil"
)

// ErrInvalidTaskfile is the sentinel error wrapped by InvalidTaskfileError.
var ErrInvalidTaskfile = errors.New("invalid task file")

// InvalidTaskfileError is returned when a task file fails validation.
// It wraps ErrInvalidTaskfile for errors.Is() compatibility and collects
// every problem found in one pass.
type InvalidTaskfileError struct {
	FieldErrors []error
}

// Error implements the error interface.
func (e *InvalidTaskfileError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("%s: %v", ErrInvalidTaskfile, e.FieldErrors[0])
	}
	lines := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		lines = append(lines, fe.Error())
	}
	return fmt.Sprintf("%s: %d errors:\n  %s", ErrInvalidTaskfile, len(e.FieldErrors), strings.Join(lines, "\n  "))
}

// Unwrap returns ErrInvalidTaskfile and the individual field errors, so
// errors.Is and errors.As see both the sentinel and any *dag.CycleError.
func (e *InvalidTaskfileError) Unwrap() []error {
	return append([]error{ErrInvalidTaskfile}, e.FieldErrors...)
}

// Validate checks the constraints the CUE schema cannot express: unique
// task names, resolvable prerequisites and sub-task references, a resolvable
// default, exactly one action per step, and an acyclic task graph (counting
// both prerequisites and inline sub-task references as edges).
func (tf *Taskfile) Validate() error {
	file := tf.FilePath
	if file == "" {
		file = "<input>"
	}
	var errs []error
	fieldErr := func(path, format string, args ...any) {
		errs = append(errs, &cueutil.ValidationError{
			FilePath: file,
			CUEPath:  path,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(tf.Tasks) == 0 {
		fieldErr("tasks", "no tasks defined")
	}

	seen := make(map[TaskName]int)
	for i, t := range tf.Tasks {
		if ok, nameErrs := t.Name.IsValid(); !ok {
			fieldErr(fmt.Sprintf("tasks[%d].name", i), "%v", nameErrs[0])
		}
		if first, dup := seen[t.Name]; dup {
			fieldErr(fmt.Sprintf("tasks[%d].name", i), "duplicate task %q (first declared at tasks[%d])", t.Name, first)
			continue
		}
		seen[t.Name] = i
	}

	if tf.Default != "" && !tf.Has(tf.Default) {
		fieldErr("default", "unknown task %q", tf.Default)
	}

	// Edges for cycle detection: prerequisites and inline sub-task references
	// both make the referenced task run as part of the referencing one.
	g := dag.New()
	for i, t := range tf.Tasks {
		g.AddNode(string(t.Name))
		for j, d := range t.Deps {
			if !tf.Has(d) {
				fieldErr(fmt.Sprintf("tasks[%d].deps[%d]", i, j), "unknown task %q", d)
				continue
			}
			g.AddEdge(string(d), string(t.Name))
		}
		for j, s := range t.Steps {
			path := fmt.Sprintf("tasks[%d].steps[%d]", i, j)
			switch kinds := s.Kinds(); len(kinds) {
			case 0:
				fieldErr(path, "step has no action (set one of run, task, remove, require_env, push)")
				continue
			case 1:
			default:
				fieldErr(path, "step sets several actions (%s); split it into separate steps", joinKinds(kinds))
				continue
			}
			if s.Task != "" {
				if !tf.Has(s.Task) {
					fieldErr(path+".task", "unknown task %q", s.Task)
					continue
				}
				g.AddEdge(string(s.Task), string(t.Name))
			}
		}
	}

	if _, err := g.TopologicalSort(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return &InvalidTaskfileError{FieldErrors: errs}
	}
	return nil
}

func joinKinds(kinds []StepKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
