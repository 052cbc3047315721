// ABOUTME: Declarative route table for portal pages and the JSON API
// ABOUTME: Builds the ServeMux with per-route middleware chains and the fallback redirect

package handlers

import (
	"net/http"
	"strings"

	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/services"
)

// Route defines an endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
	// Gated pages render only when the session holds a token (route guard on)
	Gated bool
	// Middleware runs inside the common chain, outermost first
	Middleware []func(http.HandlerFunc) http.HandlerFunc
}

// Routes returns every portal route for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Pages
		{Method: http.MethodGet, Path: services.LoginPath, Handler: h.LoginPage},
		{Method: http.MethodPost, Path: services.LoginPath, Handler: h.Login,
			Middleware: []func(http.HandlerFunc) http.HandlerFunc{h.rateLimitLogin()}},
		{Method: http.MethodGet, Path: "/login/microsoft", Handler: h.MicrosoftLogin},
		{Method: http.MethodGet, Path: services.HomePath, Handler: h.Home, Gated: true},
		{Method: http.MethodGet, Path: services.DashboardPath, Handler: h.Dashboard, Gated: true},
		{Method: http.MethodGet, Path: services.CallbackPath, Handler: h.Callback},
		{Method: http.MethodPost, Path: "/logout", Handler: h.Logout},

		// JSON API
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/v1/session", Handler: h.SessionInfo},
		{Method: http.MethodGet, Path: "/api/v1/weather", Handler: h.Weather,
			Middleware: []func(http.HandlerFunc) http.HandlerFunc{middleware.RequireToken(h.sessions)}},
	}
}

func (h *Handler) rateLimitLogin() func(http.HandlerFunc) http.HandlerFunc {
	if h.loginLimits == nil {
		return nil
	}
	return middleware.RateLimit(h.loginLimits, middleware.ClientIP)
}

// Router registers all routes on a new ServeMux.
// Every route runs LogRequest, CSRF, and LoadSession; /api/v1 routes add CORS.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()

	cors := middleware.CORS(h.cfg.CORSAllowedOrigins)
	csrf := middleware.CSRF(h.cfg.CookieSecure)
	sessions := middleware.LoadSession(middleware.SessionConfig{
		Manager:      h.sessions,
		CookieSecure: h.cfg.CookieSecure,
	})

	preflight := make(map[string]bool)
	for _, rt := range h.Routes() {
		handler := rt.Handler
		if rt.Gated {
			handler = h.guard(handler)
		}

		chain := []func(http.HandlerFunc) http.HandlerFunc{middleware.LogRequest}
		if isAPI(rt.Path) {
			chain = append(chain, cors)
		}
		chain = append(chain, csrf, sessions)
		chain = append(chain, rt.Middleware...)

		mux.HandleFunc(rt.Method+" "+pattern(rt.Path), middleware.Chain(handler, chain...))

		if isAPI(rt.Path) && !preflight[rt.Path] {
			preflight[rt.Path] = true
			mux.HandleFunc(http.MethodOptions+" "+rt.Path, middleware.Chain(func(w http.ResponseWriter, r *http.Request) {}, middleware.LogRequest, cors))
		}
	}

	mux.HandleFunc("/", middleware.Chain(h.NotFound, middleware.LogRequest))
	return mux
}

// NotFound sends unknown pages back to login; unknown API paths get a JSON 404
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r.URL.Path) {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, services.LoginPath, http.StatusFound)
}

// pattern anchors the root so it does not act as a catch-all
func pattern(path string) string {
	if path == "/" {
		return "/{$}"
	}
	return path
}

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
