// ABOUTME: Interactive forecast view as a bubbletea model
// ABOUTME: Shows a spinner while the forecast loads, then the cards; r reloads

package forecast

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/views"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/styles"
)

// Fetcher loads the forecast; ok=false is the no-data marker
type Fetcher func(ctx context.Context) ([]models.WeatherEntry, bool)

// loadedMsg carries a finished fetch back to Update
type loadedMsg struct {
	entries []models.WeatherEntry
	ok      bool
}

// Model is the interactive forecast screen
type Model struct {
	ctx     context.Context
	fetch   Fetcher
	now     func() time.Time
	spinner spinner.Model
	width   int

	loading bool
	ok      bool
	cards   []views.Card
}

// New creates the model; the first fetch starts in Init
func New(ctx context.Context, fetch Fetcher, now func() time.Time) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
	)
	return Model{
		ctx:     ctx,
		fetch:   fetch,
		now:     now,
		spinner: s,
		loading: true,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		entries, ok := m.fetch(m.ctx)
		return loadedMsg{entries: entries, ok: ok}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil

	case loadedMsg:
		m.loading = false
		m.ok = msg.ok
		m.cards = nil
		if msg.ok {
			m.cards = views.BuildCards(msg.entries, m.now())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + " Cargando clima..."
	case !m.ok:
		body = styles.ErrorText.Render(views.MsgNoWeatherData)
	default:
		body = Render(m.cards, PerRow(m.width))
	}
	return body + "\n" + styles.Help.Render("r: recargar · q: salir") + "\n"
}

// Loaded reports whether the last fetch returned data
func (m Model) Loaded() bool {
	return !m.loading && m.ok
}

// Run starts the interactive view and reports whether data was shown
func Run(ctx context.Context, fetch Fetcher, now func() time.Time) (bool, error) {
	p := tea.NewProgram(New(ctx, fetch, now), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.Loaded(), nil
}
