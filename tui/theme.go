package tui

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the menu overlay.
type Styles struct {
	Menu              *lipgloss.Style
	Header            *lipgloss.Style
	Item              *lipgloss.Style
	SelectedItem      *lipgloss.Style
	DisabledItem      *lipgloss.Style
	Separator         *lipgloss.Style
	SubHeader         *lipgloss.Style
	Affordance        *lipgloss.Style
	Filter            *lipgloss.Style
	FilterPrompt      *lipgloss.Style
	FilterPlaceholder *lipgloss.Style
}

var defaultStyles = Styles{
	Menu: ptr(
		lipgloss.NewStyle().Background(lipgloss.Color("235")),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Item: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	SelectedItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	DisabledItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Separator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	SubHeader: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	),
	Affordance: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	FilterPlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// DefaultStyles exposes the standard style set used by the overlay.
func DefaultStyles() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
