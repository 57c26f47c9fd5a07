// ABOUTME: Defines lipgloss style constants for the signoff TUI: panels, stat labels, slack colors and the status bar.
// ABOUTME: Provides StyleForStatus to map slack status values to their display styles.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/edaflow/timing"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Slack colors
	ViolatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	MetStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Table header
	HeaderRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Stats header labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)
)

// StyleForStatus returns the style used to render a slack value.
func StyleForStatus(status timing.SlackStatus) lipgloss.Style {
	switch status {
	case timing.StatusViolated:
		return ViolatedStyle
	case timing.StatusMet:
		return MetStyle
	default:
		return MutedStyle
	}
}
