// ABOUTME: HTTP client for the weather portal's JSON API
// ABOUTME: Used by the health command to check a running portal

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// Client talks to a running portal
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health calls the /api/v1/health endpoint
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.get(ctx, "/api/v1/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("request canceled")
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("request timed out")
		}
		return fmt.Errorf("cannot connect to portal at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("portal returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("portal error: %s", errResp.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from portal: %w", err)
	}
	return nil
}
