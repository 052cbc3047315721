// ABOUTME: Tests for the protected resource client and its interceptors
// ABOUTME: Verifies bearer injection, 401 handling, status passthrough, and breaker behavior

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestProtectedClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL}, NewMemoryTokenStore(), NewRecordingNavigator("/dashboard"))

	var out []any
	if err := client.GetJSON(context.Background(), "/WeatherForecast", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no header", gotAuth)
	}
}

func TestProtectedClient_AttachesBearer(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	store := NewMemoryTokenStore()
	store.SetToken(context.Background(), "abc")

	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL + "/"}, store, NewRecordingNavigator("/dashboard"))

	var out map[string]bool
	if err := client.GetJSON(context.Background(), "/WeatherForecast", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc")
	}
	if gotPath != "/WeatherForecast" {
		t.Errorf("path = %q, want /WeatherForecast", gotPath)
	}
	if !out["ok"] {
		t.Error("response body not decoded")
	}
}

func TestProtectedClient_Unauthorized(t *testing.T) {
	tests := []struct {
		name          string
		currentPath   string
		wantNavigated int
	}{
		{"from dashboard navigates to login", "/dashboard", 1},
		{"already on login does not navigate", "/", 0},
		{"login with query does not navigate", "/?error=external_login_failed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			store := NewMemoryTokenStore()
			store.SetToken(context.Background(), "stale")
			nav := NewRecordingNavigator(tt.currentPath)

			client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL}, store, nav)

			var out any
			err := client.GetJSON(context.Background(), "/WeatherForecast", &out)
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("error = %v, want ErrUnauthorized", err)
			}
			if _, ok := store.GetToken(context.Background()); ok {
				t.Error("token should be cleared after 401")
			}
			if nav.Count() != tt.wantNavigated {
				t.Errorf("navigations = %d, want %d", nav.Count(), tt.wantNavigated)
			}
			if tt.wantNavigated > 0 {
				if target, _ := nav.Target(); target != LoginPath {
					t.Errorf("navigated to %q, want %q", target, LoginPath)
				}
			}
		})
	}
}

func TestProtectedClient_StatusPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	store := NewMemoryTokenStore()
	store.SetToken(context.Background(), "abc")
	nav := NewRecordingNavigator("/dashboard")

	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL}, store, nav)

	var out any
	err := client.GetJSON(context.Background(), "/WeatherForecast", &out)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "boom" {
		t.Errorf("StatusError = %+v", statusErr)
	}
	if _, ok := store.GetToken(context.Background()); !ok {
		t.Error("a 500 must not clear the token")
	}
	if nav.Count() != 0 {
		t.Error("a 500 must not navigate")
	}
}

func TestProtectedClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL}, NewMemoryTokenStore(), nil)

	var out []any
	if err := client.GetJSON(context.Background(), "/WeatherForecast", &out); err == nil {
		t.Error("expected decode error")
	}
}

func TestProtectedClient_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	breaker := NewBreaker("test", 2, time.Minute)
	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL, Breaker: breaker}, NewMemoryTokenStore(), nil)

	var out any
	for i := 0; i < 2; i++ {
		var statusErr *StatusError
		if err := client.GetJSON(context.Background(), "/x", &out); !errors.As(err, &statusErr) {
			t.Fatalf("call %d: error = %v, want *StatusError", i, err)
		}
	}

	err := client.GetJSON(context.Background(), "/x", &out)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
	if hits.Load() != 2 {
		t.Errorf("upstream hits = %d, want 2 (third call rejected locally)", hits.Load())
	}
}

func TestProtectedClient_UnauthorizedDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	breaker := NewBreaker("test", 1, time.Minute)
	client := NewProtectedClient(ProtectedClientConfig{BaseURL: server.URL, Breaker: breaker}, NewMemoryTokenStore(), nil)

	var out any
	for i := 0; i < 3; i++ {
		if err := client.GetJSON(context.Background(), "/x", &out); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("call %d: error = %v, want ErrUnauthorized", i, err)
		}
	}
}

func TestProtectedClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewProtectedClient(ProtectedClientConfig{BaseURL: url, Timeout: time.Second}, NewMemoryTokenStore(), nil)

	var out any
	err := client.GetJSON(context.Background(), "/x", &out)
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrCircuitOpen) {
		t.Errorf("unexpected classification: %v", err)
	}
}
