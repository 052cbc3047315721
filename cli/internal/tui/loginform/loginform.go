// ABOUTME: Interactive username/password prompt built on huh
// ABOUTME: Used by the login command when credentials are not passed as flags

package loginform

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
)

// ErrCancelled is returned when the user aborts the prompt
var ErrCancelled = errors.New("login cancelled")

// Form collects credentials
type Form struct {
	username string
	password string
	form     *huh.Form
}

// New builds the prompt, prefilling username when given
func New(username string) *Form {
	f := &Form{username: username}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("test").
				Value(&f.username).
				Validate(notBlank),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(notBlank),
		).Title("Bienvenido").
			Description("Ingresa tus credenciales para acceder al panel."),
	).WithTheme(createTheme())
	return f
}

// Run shows the prompt and returns the entered credentials
func (f *Form) Run(ctx context.Context) (models.LoginRequest, error) {
	if err := f.form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return models.LoginRequest{}, ErrCancelled
		}
		return models.LoginRequest{}, err
	}
	return models.LoginRequest{Username: f.username, Password: f.password}, nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(services.MsgFillBothFields)
	}
	return nil
}

// createTheme returns a huh theme matching the portal colors
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")      // Cyan-500 - primary
	cyanLight := lipgloss.Color("#22D3EE") // Cyan-400 - accents
	gray := lipgloss.Color("#9CA3AF")      // Gray-400 - muted
	grayLight := lipgloss.Color("#E5E7EB") // Gray-200 - text
	red := lipgloss.Color("#F87171")       // Red-400 - errors

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}
