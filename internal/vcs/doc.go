// SPDX-License-Identifier: MPL-2.0

// Package vcs pushes branches of the project repository to named remotes
// using go-git, so release tasks do not depend on a git binary.
package vcs
