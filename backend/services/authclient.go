// ABOUTME: Authorization server client performing the OAuth2 password grant
// ABOUTME: Posts form-encoded credentials to /connect/token and decodes the token response

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

const tokenPath = "/connect/token"

// AuthClientConfig configures the authorization server client
type AuthClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Scope        string
	Transport    http.RoundTripper // nil = http.DefaultTransport
	Timeout      time.Duration     // 0 = 30s
}

// AuthClient talks to the authorization server
type AuthClient struct {
	cfg        AuthClientConfig
	httpClient *http.Client
}

// NewAuthClient creates an authorization server client
func NewAuthClient(cfg AuthClientConfig) *AuthClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &AuthClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
	}
}

// BaseURL returns the configured authorization server URL
func (c *AuthClient) BaseURL() string {
	return c.cfg.BaseURL
}

// Login exchanges username and password for a token (password grant).
// Failures wrap ErrAuthenticationFailed; the call is never retried.
func (c *AuthClient) Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "password")
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set("scope", c.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: create token request: %w", ErrAuthenticationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, requestError(ctx, c.cfg.BaseURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var tokenResp models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: parse token response: %w", ErrAuthenticationFailed, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrAuthenticationFailed)
	}

	return &tokenResp, nil
}

// requestError turns transport failures into readable errors, keeping the cause
func requestError(ctx context.Context, baseURL string, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled: %w", err)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot reach %s: %w", baseURL, err)
}
