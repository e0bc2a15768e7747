// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries what qtask was doing, which file or task it was
// doing it to, and what the user can try next. The issue catalogue holds a
// longer Markdown explanation per failure class, rendered with glamour when
// the CLI runs verbosely.
package issue
