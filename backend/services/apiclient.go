// ABOUTME: Protected resource API client with bearer and 401 interceptors
// ABOUTME: Built per token store; shares transport and breaker across instances

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// ProtectedClientConfig configures the resource API client
type ProtectedClientConfig struct {
	BaseURL   string
	Transport http.RoundTripper         // nil = http.DefaultTransport
	Breaker   *gobreaker.CircuitBreaker // nil = no breaker
	Timeout   time.Duration             // 0 = 30s
}

// ProtectedClient calls the resource API on behalf of one token store
type ProtectedClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProtectedClient wires the interceptors around the configured transport.
// Request order: 401 interceptor -> breaker -> bearer interceptor -> transport.
func NewProtectedClient(cfg ProtectedClientConfig, store TokenStore, nav Navigator) *ProtectedClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = &bearerTransport{next: base, store: store}
	if cfg.Breaker != nil {
		rt = &breakerTransport{next: rt, cb: cfg.Breaker}
	}
	rt = &unauthorizedTransport{next: rt, store: store, nav: nav}

	return &ProtectedClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: rt,
		},
	}
}

// GetJSON issues GET baseURL+path and decodes a 2xx JSON body into out.
// A 401 yields ErrUnauthorized; other non-2xx statuses yield *StatusError.
func (c *ProtectedClient) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return ErrUnauthorized
		}
		if errors.Is(err, ErrCircuitOpen) {
			return fmt.Errorf("GET %s: %w", path, ErrCircuitOpen)
		}
		return fmt.Errorf("GET %s: %w", path, requestError(ctx, c.baseURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}

	return nil
}
