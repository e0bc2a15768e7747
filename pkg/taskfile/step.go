// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	"fmt"
	"strings"
)

const (
	// StepRun executes a shell command line.
	StepRun StepKind = "run"
	// StepTask runs another task's full step sequence inline.
	StepTask StepKind = "task"
	// StepRemove deletes files and directories; absent paths are ignored.
	StepRemove StepKind = "remove"
	// StepRequireEnv aborts the task unless an environment variable is set.
	StepRequireEnv StepKind = "require_env"
	// StepPush pushes a branch to git remotes in order.
	StepPush StepKind = "push"
)

type (
	// StepKind names which action a step performs.
	StepKind string

	// Step is one entry in a task's sequence. Exactly one action field is set.
	Step struct {
		Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
		Run         string   `json:"run,omitempty" yaml:"run,omitempty" toml:"run,omitempty"`
		Task        TaskName `json:"task,omitempty" yaml:"task,omitempty" toml:"task,omitempty"`
		Remove      []string `json:"remove,omitempty" yaml:"remove,omitempty" toml:"remove,omitempty"`
		RequireEnv  string   `json:"require_env,omitempty" yaml:"require_env,omitempty" toml:"require_env,omitempty"`
		Push        *Push    `json:"push,omitempty" yaml:"push,omitempty" toml:"push,omitempty"`
	}

	// Push describes a push of one branch to several remotes. Remotes are
	// pushed in order and the first failure stops the step.
	Push struct {
		Remotes []string `json:"remotes" yaml:"remotes" toml:"remotes"`
		// Branch defaults to the currently checked-out branch.
		Branch string `json:"branch,omitempty" yaml:"branch,omitempty" toml:"branch,omitempty"`
	}
)

// Kinds returns the action kinds set on the step. A well-formed step has
// exactly one.
func (s Step) Kinds() []StepKind {
	var kinds []StepKind
	if s.Run != "" {
		kinds = append(kinds, StepRun)
	}
	if s.Task != "" {
		kinds = append(kinds, StepTask)
	}
	if len(s.Remove) > 0 {
		kinds = append(kinds, StepRemove)
	}
	if s.RequireEnv != "" {
		kinds = append(kinds, StepRequireEnv)
	}
	if s.Push != nil {
		kinds = append(kinds, StepPush)
	}
	return kinds
}

// Kind returns the step's action kind, or "" when zero or several are set.
func (s Step) Kind() StepKind {
	kinds := s.Kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// String renders the step the way plan and dry-run output show it.
func (s Step) String() string {
	switch s.Kind() {
	case StepRun:
		return s.Run
	case StepTask:
		return fmt.Sprintf("task %s", s.Task)
	case StepRemove:
		return fmt.Sprintf("remove %s", strings.Join(s.Remove, " "))
	case StepRequireEnv:
		return fmt.Sprintf("require $%s", s.RequireEnv)
	case StepPush:
		branch := s.Push.Branch
		if branch == "" {
			branch = "HEAD"
		}
		return fmt.Sprintf("push %s to %s", branch, strings.Join(s.Push.Remotes, ", "))
	default:
		return "<invalid step>"
	}
}
