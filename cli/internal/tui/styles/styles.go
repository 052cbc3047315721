// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: Defines the palette, card borders, and text styles used by every command

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette, matching the portal pages
	Primary   = lipgloss.Color("#06B6D4") // Cyan
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Info      = lipgloss.Color("#3B82F6") // Blue
	Highlight = lipgloss.Color("#0E7490") // Dark cyan, today's card

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorText = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Forecast cards
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1).
		Width(30)

	TodayCard = Card.
			BorderForeground(Primary).
			BorderStyle(lipgloss.ThickBorder())

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Key style for labels
	KeyStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)
)
