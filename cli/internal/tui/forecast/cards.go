// ABOUTME: Renders forecast cards for the terminal with lipgloss
// ABOUTME: Shares date and temperature formatting with the portal dashboard

package forecast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/galaxy-weather/weather-portal/backend/views"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/icons"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/styles"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/widgets"
)

// EmptyMessage is shown when the API answered with no entries
const EmptyMessage = "No hay datos de clima para mostrar."

// DefaultPerRow is how many cards fit on one line of an 80 column terminal
const DefaultPerRow = 3

// RenderCard draws one forecast day
func RenderCard(c views.Card) string {
	var sb strings.Builder

	sb.WriteString(icons.Calendar.String() + " " + c.Date)
	if c.Today {
		sb.WriteString(" " + widgets.Badge("HOY", widgets.StatusInfo))
	}
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(c.Summary))
	sb.WriteString("\n")
	sb.WriteString(styles.ValueStyle.Render(c.TempC+"°C") + " · " + c.TempF + "° F")
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Sensación aprox. " + c.TempC + "°C"))

	style := styles.Card
	if c.Today {
		style = styles.TodayCard
	}
	return style.Render(sb.String())
}

// Render lays cards out perRow to a line under a heading
func Render(cards []views.Card, perRow int) string {
	if len(cards) == 0 {
		return styles.Subtitle.Render(EmptyMessage)
	}
	if perRow < 1 {
		perRow = DefaultPerRow
	}

	rows := []string{
		styles.Title.Render(icons.Sun.String() + " Próximos días"),
	}
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rendered := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			rendered = append(rendered, RenderCard(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// PerRow fits as many cards as the terminal width allows
func PerRow(width int) int {
	cardWidth := lipgloss.Width(styles.Card.Render(""))
	if width <= 0 || cardWidth == 0 {
		return DefaultPerRow
	}
	return max(1, width/cardWidth)
}
