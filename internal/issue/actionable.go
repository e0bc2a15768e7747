// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError is an error with context for user-facing error messages.
//
//	err := issue.Wrap(loadErr, "load task file", "./qtask.cue",
//		"Run 'qtask init' to create one").WithIssue(issue.TaskfileNotFoundId)
type ActionableError struct {
	// Operation describes what was being attempted (e.g., "load task file").
	Operation string
	// Resource identifies the file, task or remote involved (optional).
	Resource string
	// Suggestions provides hints on how to fix the issue (optional).
	Suggestions []string
	// Cause is the underlying error (optional).
	Cause error
	// IssueID points at the catalogue entry explaining this failure class;
	// zero when there is none.
	IssueID Id
}

// Wrap wraps err with an operation, an optional resource and suggestions.
// Returns nil when err is nil.
func Wrap(err error, operation, resource string, suggestions ...string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{
		Operation:   operation,
		Resource:    resource,
		Suggestions: suggestions,
		Cause:       err,
	}
}

// WithIssue attaches a catalogue entry and returns the receiver.
func (e *ActionableError) WithIssue(id Id) *ActionableError {
	e.IssueID = id
	return e
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(" ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the message followed by the suggestions, one per line.
// When verbose is true the full error chain is appended.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}
	return msg.String()
}

// HasSuggestions returns true if the error has any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// IssueOf returns the catalogue entry attached to the first ActionableError
// in err's chain, or nil.
func IssueOf(err error) *Issue {
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.IssueID == 0 {
		return nil
	}
	return Get(ae.IssueID)
}
