// Package tui provides the displays a review session talks to: a
// full-screen bubbletea program and a plain line-oriented one.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	Accent = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	Muted  = lipgloss.AdaptiveColor{Light: "#6a737d", Dark: "#8b949e"}
	Border = lipgloss.AdaptiveColor{Light: "#dce0e5", Dark: "#2a3850"}
	Warn   = lipgloss.Color("#FFC107")
)

// Styles holds the styled components shared by both displays.
type Styles struct {
	Subject lipgloss.Style
	ID      lipgloss.Style
	Label   lipgloss.Style
	Card    lipgloss.Style
	Status  lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Subject: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		ID:      lipgloss.NewStyle().Foreground(Muted),
		Label:   lipgloss.NewStyle().Italic(true).Foreground(Muted),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(Warn),
	}
}
