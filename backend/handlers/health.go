// ABOUTME: JSON API handlers for health, session state, and weather data
// ABOUTME: Served under /api/v1 for scripts and the terminal client

package handlers

import (
	"net/http"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

// Health returns portal configuration and the resource API breaker state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	breaker := "disabled"
	if h.api.Breaker != nil {
		breaker = h.api.Breaker.State().String()
	}

	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		AuthAPI:        h.cfg.AuthAPIURL,
		ResourceAPI:    h.cfg.APIBaseURL,
		SessionBackend: h.cfg.SessionBackend,
		BreakerState:   breaker,
		RouteGuard:     h.cfg.RouteGuard,
	})
}

// SessionInfo reports whether the caller's session holds a token. The token itself is never returned.
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.SessionInfoResponse{Authenticated: h.hasToken(r)})
}

// Weather proxies the forecast through the session's token.
func (h *Handler) Weather(w http.ResponseWriter, r *http.Request) {
	nav := services.NewRecordingNavigator(r.URL.Path)
	entries, ok := services.GetWeather(r.Context(), h.resourceClient(r, nav))

	if target, navigated := nav.Target(); navigated {
		h.writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Error:    "Sesión expirada",
			Redirect: target,
			Code:     http.StatusUnauthorized,
		})
		return
	}

	if !ok {
		h.writeError(w, views.MsgWeatherLoadFailed, http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, models.WeatherResponse{Entries: entries})
}
