// ABOUTME: Login, federated login, callback, and logout handlers
// ABOUTME: Tokens are stored in the server-side session; the browser only holds the session cookie

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

const externalLoginFailed = "external_login_failed"

// LoginPage renders the login form
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := views.LoginPage{CSRFToken: middleware.CSRFToken(r)}
	if r.URL.Query().Get("error") == externalLoginFailed {
		data.Error = views.MsgExternalLoginFailed
	}
	h.render(w, http.StatusOK, views.PageLogin, data)
}

// Login performs the password grant and stores the token in the session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds := models.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	_, err := h.auth.SignIn(r.Context(), h.signInKey(r), h.tokens(r), creds)
	if err != nil {
		data := views.LoginPage{
			CSRFToken: middleware.CSRFToken(r),
			Username:  creds.Username,
		}

		status := http.StatusUnauthorized
		if errors.Is(err, services.ErrValidation) {
			data.Error = services.MsgFillBothFields
			status = http.StatusUnprocessableEntity
		} else {
			data.Error = views.MsgLoginFailed
		}

		h.render(w, status, views.PageLogin, data)
		return
	}

	http.Redirect(w, r, services.HomePath, http.StatusSeeOther)
}

// signInKey groups concurrent sign-ins from the same browser
func (h *Handler) signInKey(r *http.Request) string {
	if session := middleware.GetSession(r); session != nil && session.ID() != "" {
		return "session:" + session.ID()
	}
	return middleware.ClientIP(r)
}

// MicrosoftLogin sends the browser to the identity provider
func (h *Handler) MicrosoftLogin(w http.ResponseWriter, r *http.Request) {
	target := h.auth.MicrosoftLoginURL(h.cfg.CallbackURL())
	slog.Info("Redirecting to external login", "provider", "Microsoft")
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback completes a federated login
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	result := services.HandleCallback(r.Context(), r.URL.Query(), h.tokens(r))
	slog.Info("External login callback", "outcome", result.Outcome)
	http.Redirect(w, r, result.Target, http.StatusFound)
}

// Logout clears the token, deletes the session, and returns to login
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	nav := services.NewRecordingNavigator(r.URL.Path)
	if err := h.auth.Logout(r.Context(), h.tokens(r), nav); err != nil {
		slog.Warn("Logout could not clear token", "error", err)
	}

	if session := middleware.GetSession(r); session != nil && session.ID() != "" {
		if err := h.sessions.Delete(r.Context(), session.ID()); err != nil {
			slog.Warn("Failed to delete session on logout", "error", err)
		}
		middleware.ClearSessionCookie(w, h.cfg.CookieSecure)
	}

	target, ok := nav.Target()
	if !ok {
		target = services.LoginPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	if err := h.views.RenderHTTP(w, status, page, data); err != nil {
		slog.Error("Failed to render page", "page", page, "error", err)
	}
}
