// ABOUTME: Auth request/response models for the password grant and sessions
// ABOUTME: Defines login credentials, token response, and server-side session record

package models

import (
	"strings"
	"time"
)

// LoginRequest represents credentials submitted from the login form
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// Trimmed returns a copy with surrounding whitespace removed from the username,
// for display and logging. Credentials are sent upstream as typed.
func (r LoginRequest) Trimmed() LoginRequest {
	return LoginRequest{
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
	}
}

// LoginResponse is the token endpoint response body
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// SessionInfoResponse reports whether the caller's session holds a token
type SessionInfoResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Session stores server-side state for one browser
// The token is never exposed to the client
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"` // Never expose to client
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasToken reports whether the session currently holds a bearer token
func (s *Session) HasToken() bool {
	return s != nil && s.Token != ""
}
