// ABOUTME: Federated login callback: reads redirect parameters and stores the token
// ABOUTME: One-shot transition from pending to success or failure with a navigation target

package services

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// CallbackOutcome is the terminal state of a callback
type CallbackOutcome string

const (
	CallbackSuccess CallbackOutcome = "success"
	CallbackFailure CallbackOutcome = "failure"
)

// CallbackResult tells the caller where to go next
type CallbackResult struct {
	Outcome CallbackOutcome
	Target  string
}

// HandleCallback processes access_token, returnUrl, and error query parameters.
// On failure the store is left untouched.
func HandleCallback(ctx context.Context, params url.Values, store TokenStore) CallbackResult {
	accessToken := params.Get("access_token")
	providerErr := params.Get("error")
	returnURL := safeReturnURL(params.Get("returnUrl"))

	slog.Debug("Callback received",
		"has_token", accessToken != "",
		"return_url", returnURL,
		"error", providerErr,
	)

	if providerErr != "" || accessToken == "" {
		slog.Warn("External login failed", "error", providerErr, "has_token", accessToken != "")
		return CallbackResult{Outcome: CallbackFailure, Target: ExternalLoginFailedPath}
	}

	if err := store.SetToken(ctx, accessToken); err != nil {
		slog.Error("Failed to store token from external login", "error", err)
		return CallbackResult{Outcome: CallbackFailure, Target: ExternalLoginFailedPath}
	}

	return CallbackResult{Outcome: CallbackSuccess, Target: returnURL}
}

// safeReturnURL keeps returnUrl only when it is a path on this site.
// Control characters are rejected since browsers strip them before resolving.
func safeReturnURL(raw string) string {
	if raw == "" {
		return DashboardPath
	}
	if !isLocalPath(raw) {
		slog.Warn("Ignoring non-local returnUrl", "return_url", raw)
		return DashboardPath
	}
	return raw
}

func isLocalPath(raw string) bool {
	if strings.IndexFunc(raw, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return false
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "" && u.Host == ""
}
