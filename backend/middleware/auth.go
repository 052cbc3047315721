// ABOUTME: Token requirement for JSON API endpoints backed by the session
// ABOUTME: Rejects requests whose session holds no usable token with a 401

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/galaxy-weather/weather-portal/backend/services"
)

// RequireToken returns middleware that answers 401 unless the request's
// session holds a token under the manager's expiry policy. LoadSession must run first.
func RequireToken(mgr *services.SessionManager) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r)
			if session == nil {
				slog.Error("RequireToken used without LoadSession", "path", r.URL.Path)
				writeJSONError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if _, ok := mgr.Tokens(session).GetToken(r.Context()); !ok {
				slog.Debug("Auth rejected: no token in session", "path", r.URL.Path)
				writeJSONError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}
