// ABOUTME: Shared fixtures for CLI command tests
// ABOUTME: Fake authorization and resource servers plus global flag isolation

package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/galaxy-weather/weather-portal/cli/internal/tokenstore"
	"github.com/golang-jwt/jwt/v5"
)

const testForecast = `[
	{"date":"2026-10-20","summary":"Warm","temperatureC":24.6,"temperatureF":76},
	{"date":"2026-10-21","summary":"Chilly","temperatureC":3}
]`

// isolate resets global flags and points the token store at a temp dir
func isolate(t *testing.T) *tokenstore.FileStore {
	t.Helper()
	for _, env := range []string{"WEATHER_PORTAL_AUTH_URL", "WEATHER_PORTAL_API_URL", "WEATHER_PORTAL_URL", "API_ALL_PROXY", "EXTERNAL_LOGIN_URL", "TOKEN_EXPIRY_POLICY"} {
		t.Setenv(env, "")
	}

	authURL, apiURL, portalURL = "", "", ""
	jsonOutput = false
	timeout = 5 * time.Second
	configDir = t.TempDir()
	t.Cleanup(func() {
		authURL, apiURL, portalURL, configDir = "", "", "", ""
		jsonOutput = false
	})
	return tokenstore.New(configDir)
}

// fakeAuthServer accepts only alice/pw and sets the auth URL flag
func fakeAuthServer(t *testing.T) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		r.ParseForm()
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)
	authURL = server.URL
	return &calls
}

// fakeAPIServer answers with status and body for Bearer T1 and sets the API URL flag
func fakeAPIServer(t *testing.T, status int, body string) *atomic.Value {
	t.Helper()
	var lastAuth atomic.Value
	lastAuth.Store("")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	apiURL = server.URL
	return &lastAuth
}

func saveToken(t *testing.T, store *tokenstore.FileStore, token string) {
	t.Helper()
	if err := store.SetToken(context.Background(), token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
