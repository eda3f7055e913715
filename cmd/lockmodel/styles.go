package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kolkov/lockmodel/internal/explore"
)

var (
	// Colors
	primaryColor = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C3AED"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#94A3B8"}
	okColor      = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#10B981"}
	warnColor    = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#F59E0B"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FF5F56", Dark: "#EF4444"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(mutedColor)
)

// outcomeStyle returns the badge style for an outcome.
func outcomeStyle(o explore.Outcome) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch o {
	case explore.Stop:
		return base.Foreground(okColor)
	case explore.StepLimit:
		return base.Foreground(warnColor)
	default:
		return base.Foreground(errorColor)
	}
}
