// SPDX-License-Identifier: MPL-2.0

// Package taskfile provides types and parsing for qtask task files.
//
// A task file declares named tasks. Each task lists the tasks it depends on
// (prerequisites, run first and once per invocation) and an ordered list of
// steps. A step is exactly one of: a shell command line, an inline reference
// to another task, a list of paths to remove, an environment-variable guard,
// or a push of the current branch to a list of git remotes.
//
// Task files are written in CUE (qtask.cue), YAML (qtask.yaml) or TOML
// (qtask.toml). All three formats are validated against the same embedded
// CUE schema and then checked for references and cycles in Go.
package taskfile
