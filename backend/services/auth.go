// ABOUTME: Auth operations: password sign-in, federated login URL, and logout
// ABOUTME: Validates credentials locally and de-duplicates concurrent sign-ins per session

package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// MsgFillBothFields is shown when either credential is blank
const MsgFillBothFields = "Por favor, completa ambos campos."

// PasswordGranter performs the password grant against the authorization server
type PasswordGranter interface {
	Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error)
}

// AuthService implements sign-in, federated login, and logout
type AuthService struct {
	granter          PasswordGranter
	authBaseURL      string
	externalLoginURL string
	validate         *validator.Validate
	group            singleflight.Group
}

// AuthServiceConfig configures the federated login target
type AuthServiceConfig struct {
	AuthBaseURL      string // used to derive the Microsoft login URL
	ExternalLoginURL string // explicit override, used verbatim
}

// NewAuthService creates the auth operations service
func NewAuthService(granter PasswordGranter, cfg AuthServiceConfig) *AuthService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &AuthService{
		granter:          granter,
		authBaseURL:      strings.TrimRight(cfg.AuthBaseURL, "/"),
		externalLoginURL: cfg.ExternalLoginURL,
		validate:         v,
	}
}

// Validate rejects blank credentials with a *ValidationError
func (s *AuthService) Validate(creds models.LoginRequest) error {
	err := s.validate.Struct(creds)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = MsgFillBothFields
	}
	return &ValidationError{Fields: fields}
}

// signInTimeout bounds a shared password grant once it is detached from the
// request that started it
const signInTimeout = 30 * time.Second

// SignIn validates creds, performs the password grant, and stores the access token.
// Concurrent calls sharing key and identical credentials share one upstream
// request; each caller then stores the token in its own store. The shared
// request outlives any single caller, and each caller stops waiting when its
// own ctx is done.
func (s *AuthService) SignIn(ctx context.Context, key string, store TokenStore, creds models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.Validate(creds); err != nil {
		return nil, err
	}
	username := creds.Trimmed().Username

	ch := s.group.DoChan(signInGroupKey(key, creds), func() (interface{}, error) {
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), signInTimeout)
		defer cancel()
		return s.granter.Login(loginCtx, creds)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		slog.Debug("Sign-in abandoned by caller", "username", username, "error", ctx.Err())
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Shared {
		slog.Debug("Sign-in shared with concurrent request", "username", username)
	}
	if res.Err != nil {
		slog.Warn("Sign-in failed", "username", username, "error", res.Err)
		return nil, res.Err
	}

	resp := res.Val.(*models.LoginResponse)
	if err := store.SetToken(ctx, resp.AccessToken); err != nil {
		slog.Error("Failed to store token", "error", err)
		return nil, err
	}

	slog.Info("Sign-in succeeded", "username", username)
	return resp, nil
}

// signInGroupKey includes a password digest so callers with different
// passwords never receive each other's grant
func signInGroupKey(key string, creds models.LoginRequest) string {
	sum := sha256.Sum256([]byte(creds.Password))
	return key + "\x00" + creds.Username + "\x00" + hex.EncodeToString(sum[:])
}

// MicrosoftLoginURL is where the user is sent for federated login.
// The provider redirects back to callbackURL with access_token, returnUrl, or error.
func (s *AuthService) MicrosoftLoginURL(callbackURL string) string {
	if s.externalLoginURL != "" {
		return s.externalLoginURL
	}
	return s.authBaseURL + "/Account/ExternalLogin?provider=Microsoft&returnUrl=" + url.QueryEscape(callbackURL)
}

// Logout clears the token and forces navigation to the login view.
// No revocation call is made.
func (s *AuthService) Logout(ctx context.Context, store TokenStore, nav Navigator) error {
	err := store.ClearToken(ctx)
	if err != nil {
		slog.Error("Failed to clear token on logout", "error", err)
	}
	nav.Navigate(LoginPath)
	return err
}
