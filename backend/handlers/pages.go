// ABOUTME: Token-gated pages: home and the weather dashboard
// ABOUTME: The dashboard fetches the forecast server-side through the protected client

package handlers

import (
	"net/http"

	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

func (h *Handler) nav(r *http.Request) views.Nav {
	return views.Nav{ActivePath: r.URL.Path, CSRFToken: middleware.CSRFToken(r)}
}

// Home renders the landing page after login
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.PageHome, views.HomePage{Nav: h.nav(r)})
}

// Dashboard renders forecast cards, or an error or empty state.
// A 401 from the resource API ends the session and redirects to login.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	nav := services.NewRecordingNavigator(r.URL.Path)
	entries, ok := services.GetWeather(r.Context(), h.resourceClient(r, nav))

	if target, navigated := nav.Target(); navigated {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	data := views.DashboardPage{Nav: h.nav(r)}
	if !ok {
		data.Error = views.MsgNoWeatherData
	} else {
		data.Cards = views.BuildCards(entries, h.now())
	}

	h.render(w, http.StatusOK, views.PageDashboard, data)
}
