// ABOUTME: Builds the shared auth and resource clients for CLI commands
// ABOUTME: Commands use the same services core as the portal with a file token store

package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/galaxy-weather/weather-portal/backend/config"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/cli/internal/tokenstore"
)

// signInKey groups concurrent sign-ins inside one CLI process
const signInKey = "cli"

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newTokenStore() *tokenstore.FileStore {
	return tokenstore.New(GetConfigDir())
}

// newSessionTokens is the token file as commands present it, with the same
// TOKEN_EXPIRY_POLICY as the portal
func newSessionTokens() services.TokenStore {
	policy := services.ExpiryPolicy(strings.ToLower(os.Getenv("TOKEN_EXPIRY_POLICY")))
	return services.WithExpiryPolicy(newTokenStore(), policy)
}

// newTransport honors the same jumpbox proxy setting as the portal
func newTransport() (http.RoundTripper, error) {
	return services.NewTransport(os.Getenv("API_ALL_PROXY"))
}

func newAuthService() (*services.AuthService, error) {
	base, err := GetAuthURL()
	if err != nil {
		return nil, err
	}
	transport, err := newTransport()
	if err != nil {
		return nil, err
	}

	client := services.NewAuthClient(services.AuthClientConfig{
		BaseURL:      base,
		ClientID:     flagOrEnv("", "OAUTH_CLIENT_ID", config.DefaultClientID),
		ClientSecret: flagOrEnv("", "OAUTH_CLIENT_SECRET", config.DefaultClientSecret),
		Scope:        flagOrEnv("", "OAUTH_SCOPE", config.DefaultScope),
		Transport:    transport,
		Timeout:      timeout,
	})
	return services.NewAuthService(client, services.AuthServiceConfig{
		AuthBaseURL:      base,
		ExternalLoginURL: os.Getenv("EXTERNAL_LOGIN_URL"),
	}), nil
}

func newWeatherClient(store services.TokenStore, nav services.Navigator) (*services.ProtectedClient, error) {
	base, err := GetAPIURL()
	if err != nil {
		return nil, err
	}
	transport, err := newTransport()
	if err != nil {
		return nil, err
	}

	return services.NewProtectedClient(services.ProtectedClientConfig{
		BaseURL:   base,
		Transport: transport,
		Timeout:   timeout,
	}, store, nav), nil
}
