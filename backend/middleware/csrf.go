// ABOUTME: CSRF protection middleware using double-submit cookie pattern
// ABOUTME: Validates the csrf_token form field or X-CSRF-Token header against the WEATHER_CSRF cookie

package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
)

const (
	CSRFCookieName = "WEATHER_CSRF"
	CSRFFieldName  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"

	// base64url encoding of 32 bytes produces 44 characters (with padding)
	csrfTokenLength = 44

	csrfKey contextKey = "csrf"
)

// CSRF returns middleware that issues a CSRF cookie and validates it on
// state-changing requests. Templates read the token with CSRFToken.
// GET, HEAD, and OPTIONS requests are never rejected.
func CSRF(cookieSecure bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && len(cookie.Value) == csrfTokenLength {
				token = cookie.Value
			}

			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				if token == "" {
					token = issueCSRFCookie(w, cookieSecure)
				}
				next(w, r.WithContext(context.WithValue(r.Context(), csrfKey, token)))
				return
			}

			if token == "" {
				slog.Debug("CSRF rejected: missing cookie", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			submitted := r.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(CSRFFieldName)
			}

			if len(submitted) != csrfTokenLength {
				slog.Debug("CSRF rejected: missing or malformed token", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				slog.Debug("CSRF rejected: token mismatch", "path", r.URL.Path)
				writeJSONError(w, "CSRF token missing or invalid", http.StatusForbidden)
				return
			}

			slog.Debug("CSRF validated", "path", r.URL.Path)
			next(w, r.WithContext(context.WithValue(r.Context(), csrfKey, token)))
		}
	}
}

// CSRFToken returns the token to embed in forms, or ""
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfKey).(string)
	return token
}

func issueCSRFCookie(w http.ResponseWriter, secure bool) string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to generate CSRF token", "error", err)
		return ""
	}
	token := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	return token
}
