// SPDX-License-Identifier: MPL-2.0

// Package uroot provides the built-in file utilities of qtask's virtual
// shell runtime.
//
// The utilities come from the u-root project's pkg/core (cat, cp, mkdir, mv,
// rm and touch). When enabled, the virtual runtime consults the registry for
// every simple command before falling back to binaries on PATH, so the file
// handling steps of a release task behave the same on hosts without a POSIX
// userland.
//
// Errors reported by a built-in are printed to the shell's stderr with a
// "[uroot]" prefix and turn into exit status 1:
//
//	[uroot] rm: dist/qcsv-0.0.6.tar.gz: permission denied
package uroot
