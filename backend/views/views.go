// ABOUTME: Server-rendered pages for the portal using embedded html/template files
// ABOUTME: Each page is parsed together with the shared layout and navbar

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageLogin     = "login"
	PageHome      = "home"
	PageDashboard = "dashboard"
)

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// New parses all page templates
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, page := range []string{PageLogin, PageHome, PageDashboard} {
		tmpl, err := template.New("layout.html").ParseFS(templateFS,
			"templates/layout.html",
			"templates/navbar.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}

	return r, nil
}

// Render executes page into w
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.Execute(w, data)
}

// RenderHTTP buffers the page so a template error can still become a 500
func (r *Renderer) RenderHTTP(w http.ResponseWriter, status int, page string, data any) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		http.Error(w, "Error interno", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Nav is the navbar state shared by gated pages
type Nav struct {
	ActivePath string
	CSRFToken  string
}

// LoginPage is the data for the login view
type LoginPage struct {
	CSRFToken string
	Username  string
	// Error is either the field validation message or a generic failure
	Error string
}

// HomePage is the data for the home view
type HomePage struct {
	Nav Nav
}

// DashboardPage is the data for the weather dashboard
type DashboardPage struct {
	Nav   Nav
	Error string
	Cards []Card
}

// Empty reports whether the forecast loaded but had no entries
func (p DashboardPage) Empty() bool {
	return p.Error == "" && len(p.Cards) == 0
}
