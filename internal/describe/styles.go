/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package describe

import (
	"charm.land/lipgloss/v2"
)

// Styles contains the styles for rendering status reports
type Styles struct {
	Header  lipgloss.Style
	Key     lipgloss.Style
	Subtle  lipgloss.Style
	Healthy lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Whether colours are enabled
	UseColour bool
}

// NewStyles creates the report styles. With useColour false every style is a
// no-op and the output is plain text.
func NewStyles(useColour bool) *Styles {
	s := &Styles{UseColour: useColour}

	if useColour {
		s.Header = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")) // Bright Blue

		s.Key = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")) // Cyan

		s.Subtle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Dark Grey

		s.Healthy = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")). // Green
			Bold(true)

		s.Warning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")). // Yellow
			Bold(true)

		s.Error = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")). // Red
			Bold(true)
	} else {
		plain := lipgloss.NewStyle()
		s.Header = plain
		s.Key = plain
		s.Subtle = plain
		s.Healthy = plain
		s.Warning = plain
		s.Error = plain
	}

	return s
}

// StateStyle returns the style used for a classified stack state
func (s *Styles) StateStyle(st string) lipgloss.Style {
	switch st {
	case "HEALTHY":
		return s.Healthy
	case "ABSENT", "BUSY", "DEGRADED":
		return s.Warning
	default:
		return s.Error
	}
}
