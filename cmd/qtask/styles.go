// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette for dark terminal backgrounds. lipgloss drops the colors when
// output is not a terminal.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for headers such as the task file path in list output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for descriptions and secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// TaskStyle is for task names.
	TaskStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)

	// StepStyle is for rendered steps in plan and trail output.
	StepStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// defaultMarkStyle tags the default task in list output.
	defaultMarkStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Italic(true)
)
