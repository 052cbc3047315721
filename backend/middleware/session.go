// ABOUTME: Loads the browser's server-side session into the request context
// ABOUTME: Sets the session cookie when a session is first created

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
)

// SessionCookieName is the httpOnly cookie holding the session id
const SessionCookieName = "WEATHER_SESSION"

const sessionKey contextKey = "session"

// SessionConfig configures the session cookie
type SessionConfig struct {
	Manager      *services.SessionManager
	CookieSecure bool
}

// LoadSession returns middleware that opens the caller's session and stores the
// handle in the request context. Handlers retrieve it with GetSession.
func LoadSession(cfg SessionConfig) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				id = cookie.Value
			}

			session := cfg.Manager.Open(r.Context(), id, func(s *models.Session) {
				setSessionCookie(w, s.ID, cfg.Manager.TTL(), cfg.CookieSecure)
			})

			// Stale or forged cookie: drop it
			if id != "" && session.ID() == "" {
				ClearSessionCookie(w, cfg.CookieSecure)
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// GetSession returns the session handle placed by LoadSession, or nil
func GetSession(r *http.Request) *services.Session {
	session, ok := r.Context().Value(sessionKey).(*services.Session)
	if !ok {
		return nil
	}
	return session
}

// WithSession returns a copy of r carrying session; used by tests and the CLI callback listener
func WithSession(r *http.Request, session *services.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, session))
}

// SameSite Lax so the cookie survives the redirect back from the identity provider
func setSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie expires the session cookie in the browser
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
