// ABOUTME: HTTP handlers for the weather portal pages and JSON API
// ABOUTME: Holds shared dependencies and the JSON response helpers

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/config"
	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

type Handler struct {
	cfg         *config.Config
	auth        *services.AuthService
	sessions    *services.SessionManager
	api         services.ProtectedClientConfig
	views       *views.Renderer
	loginLimits *middleware.RateLimiter
	now         func() time.Time
}

// Options carries the services a Handler needs
type Options struct {
	Auth     *services.AuthService
	Sessions *services.SessionManager
	API      services.ProtectedClientConfig
	Views    *views.Renderer
	// LoginLimiter throttles POST /; nil disables rate limiting
	LoginLimiter *middleware.RateLimiter
}

func NewHandler(cfg *config.Config, opts Options) *Handler {
	return &Handler{
		cfg:         cfg,
		auth:        opts.Auth,
		sessions:    opts.Sessions,
		api:         opts.API,
		views:       opts.Views,
		loginLimits: opts.LoginLimiter,
		now:         time.Now,
	}
}

// tokens returns the request's session as a TokenStore
func (h *Handler) tokens(r *http.Request) services.TokenStore {
	session := middleware.GetSession(r)
	if session == nil {
		slog.Error("No session in request context", "path", r.URL.Path)
		return services.NewMemoryTokenStore()
	}
	return h.sessions.Tokens(session)
}

// hasToken is the capability check used by the guard and the session endpoint
func (h *Handler) hasToken(r *http.Request) bool {
	_, ok := h.tokens(r).GetToken(r.Context())
	return ok
}

// resourceClient builds a protected client bound to this request's session and navigator
func (h *Handler) resourceClient(r *http.Request, nav services.Navigator) *services.ProtectedClient {
	return services.NewProtectedClient(h.api, h.tokens(r), nav)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
