// SPDX-License-Identifier: MPL-2.0

// Package runtime executes single shell command lines on behalf of the task
// runner.
//
// Two runtimes are provided: the native runtime hands the command line to the
// host shell (sh -c, or cmd/PowerShell on Windows); the virtual runtime
// interprets it in-process with mvdan.cc/sh, optionally backed by u-root
// implementations of common file utilities so that task files behave the same
// on hosts without a POSIX userland.
package runtime
