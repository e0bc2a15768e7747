// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/qcsv/qtask/internal/dag"
)

var (
	// ErrNoSuchTarget is returned when a requested task is not declared.
	ErrNoSuchTarget = errors.New("no such target")
	// ErrInvalidTaskName is the sentinel error wrapped by InvalidTaskNameError.
	ErrInvalidTaskName = errors.New("invalid task name")

	taskNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
)

type (
	// TaskName identifies a task. It starts with a letter and continues with
	// letters, digits, '-' or '_'.
	TaskName string

	// InvalidTaskNameError is returned when a TaskName does not match the
	// naming rules. It wraps ErrInvalidTaskName for errors.Is() compatibility.
	InvalidTaskNameError struct {
		Value TaskName
	}

	// UnknownTaskError is returned when a task name is not declared in the
	// task file. It wraps ErrNoSuchTarget.
	UnknownTaskError struct {
		Name TaskName
	}

	// Taskfile is a parsed task file.
	Taskfile struct {
		// Default is the task run when no target is requested.
		Default TaskName `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
		// Env is added to the environment of every step.
		Env map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
		// Tasks in declaration order.
		Tasks []Task `json:"tasks" yaml:"tasks" toml:"tasks"`

		// FilePath is where the task file was loaded from. Empty for in-memory files.
		FilePath string `json:"-" yaml:"-" toml:"-"`
	}

	// Task is a named, ordered sequence of steps with optional prerequisites.
	Task struct {
		Name        TaskName          `json:"name" yaml:"name" toml:"name"`
		Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
		Deps        []TaskName        `json:"deps,omitempty" yaml:"deps,omitempty" toml:"deps,omitempty"`
		Dir         string            `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
		Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
		Steps       []Step            `json:"steps,omitempty" yaml:"steps,omitempty" toml:"steps,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidTaskNameError) Error() string {
	return fmt.Sprintf("invalid task name %q (must start with a letter and contain only letters, digits, '-' or '_')", e.Value)
}

// Unwrap returns ErrInvalidTaskName so callers can use errors.Is for programmatic detection.
func (e *InvalidTaskNameError) Unwrap() error { return ErrInvalidTaskName }

// Error implements the error interface.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("no such target: %s", e.Name)
}

// Unwrap returns ErrNoSuchTarget.
func (e *UnknownTaskError) Unwrap() error { return ErrNoSuchTarget }

// IsValid returns whether the TaskName matches the naming rules,
// and a list of validation errors if it does not.
func (n TaskName) IsValid() (bool, []error) {
	if !taskNamePattern.MatchString(string(n)) {
		return false, []error{&InvalidTaskNameError{Value: n}}
	}
	return true, nil
}

// String returns the task name.
func (n TaskName) String() string { return string(n) }

// Lookup returns the task with the given name.
func (tf *Taskfile) Lookup(name TaskName) (*Task, error) {
	for i := range tf.Tasks {
		if tf.Tasks[i].Name == name {
			return &tf.Tasks[i], nil
		}
	}
	return nil, &UnknownTaskError{Name: name}
}

// Has reports whether a task with the given name is declared.
func (tf *Taskfile) Has(name TaskName) bool {
	_, err := tf.Lookup(name)
	return err == nil
}

// Names returns the task names in declaration order.
func (tf *Taskfile) Names() []TaskName {
	names := make([]TaskName, 0, len(tf.Tasks))
	for _, t := range tf.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// Dir returns the directory the task file lives in, or "." for in-memory files.
func (tf *Taskfile) Dir() string {
	if tf.FilePath == "" {
		return "."
	}
	return filepath.Dir(tf.FilePath)
}

// Graph builds the prerequisite graph: one node per task, an edge from each
// prerequisite to the task that declares it. Dangling references are added
// as nodes so callers can report them; Validate rejects them beforehand.
func (tf *Taskfile) Graph() *dag.Graph {
	g := dag.New()
	for _, t := range tf.Tasks {
		g.AddNode(string(t.Name))
	}
	for _, t := range tf.Tasks {
		for _, d := range t.Deps {
			g.AddEdge(string(d), string(t.Name))
		}
	}
	return g
}

// WorkDir returns the directory the task's steps run in.
func (t *Task) WorkDir(base string) string {
	if t.Dir == "" {
		return base
	}
	if filepath.IsAbs(t.Dir) {
		return t.Dir
	}
	return filepath.Join(base, filepath.FromSlash(t.Dir))
}
