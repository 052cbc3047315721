// ABOUTME: Route guard for token-gated pages
// ABOUTME: Redirects to login before rendering when the session holds no token

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/galaxy-weather/weather-portal/backend/services"
)

// CheckAccess decides whether a page may render. Ungated pages and a disabled
// guard always pass; otherwise a token is required and the redirect target is login.
func CheckAccess(gated, guardEnabled, hasToken bool) (allowed bool, redirect string) {
	if !gated || !guardEnabled || hasToken {
		return true, ""
	}
	return false, services.LoginPath
}

func (h *Handler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allowed, redirect := CheckAccess(true, h.cfg.RouteGuard, h.hasToken(r))
		if !allowed {
			slog.Debug("Route guard redirect", "path", r.URL.Path, "to", redirect)
			http.Redirect(w, r, redirect, http.StatusFound)
			return
		}
		next(w, r)
	}
}
