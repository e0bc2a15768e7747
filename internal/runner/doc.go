// SPDX-License-Identifier: MPL-2.0

// Package runner executes the tasks of a task file.
//
// A run resolves its targets, orders them after their prerequisites with the
// task graph, and executes each task's steps strictly in order. The first
// failing step stops the whole run and its exit status becomes the run's.
// Prerequisites run at most once per run; a task step runs the referenced
// task's steps every time it is reached.
package runner
