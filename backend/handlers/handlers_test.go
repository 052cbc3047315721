// ABOUTME: End-to-end handler tests against fake authorization and resource servers
// ABOUTME: Drives the real router with a cookie jar the way a browser would

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/config"
	"github.com/galaxy-weather/weather-portal/backend/middleware"
	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
)

const testForecast = `[
	{"date":"2026-10-20","summary":"Warm","temperatureC":24.6,"temperatureF":76},
	{"date":"2026-10-21","summary":"","temperatureC":12}
]`

// API modes for the fake resource server
const (
	apiOK      = "ok"
	apiFail    = "fail"
	apiExpired = "expired"
)

type testEnv struct {
	t        *testing.T
	handler  *Handler
	portal   *httptest.Server
	authAPI  *httptest.Server
	resource *httptest.Server
	client   *http.Client

	authCalls atomic.Int32
	apiCalls  atomic.Int32
	apiMode   atomic.Value
	lastAuth  atomic.Value
}

type envOption func(*config.Config, *Options)

func withRouteGuard(enabled bool) envOption {
	return func(cfg *config.Config, _ *Options) { cfg.RouteGuard = enabled }
}

func withLoginLimit(n int) envOption {
	return func(_ *config.Config, opts *Options) { opts.LoginLimiter = middleware.NewRateLimiter(n, time.Minute) }
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{t: t}
	env.apiMode.Store(apiOK)
	env.lastAuth.Store("")

	env.authAPI = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.authCalls.Add(1)
		r.ParseForm()
		if r.URL.Path != "/connect/token" || r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"T1","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(env.authAPI.Close)

	env.resource = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.apiCalls.Add(1)
		env.lastAuth.Store(r.Header.Get("Authorization"))
		switch env.apiMode.Load().(string) {
		case apiFail:
			w.WriteHeader(http.StatusInternalServerError)
			return
		case apiExpired:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(testForecast))
	}))
	t.Cleanup(env.resource.Close)

	cfg := &config.Config{
		PublicURL:      "http://portal.test",
		RouteGuard:     true,
		AuthAPIURL:     env.authAPI.URL,
		APIBaseURL:     env.resource.URL,
		SessionBackend: config.SessionBackendMemory,
	}

	renderer, err := views.New()
	if err != nil {
		t.Fatalf("views.New: %v", err)
	}

	store := services.NewMemorySessionStore(time.Hour)
	t.Cleanup(func() { store.Close() })

	opts := Options{
		Auth: services.NewAuthService(
			services.NewAuthClient(services.AuthClientConfig{BaseURL: env.authAPI.URL, ClientID: "client-02", ClientSecret: "secret"}),
			services.AuthServiceConfig{AuthBaseURL: env.authAPI.URL},
		),
		Sessions: services.NewSessionManager(store, time.Hour, services.ExpiryIgnore),
		API:      services.ProtectedClientConfig{BaseURL: env.resource.URL},
		Views:    renderer,
	}
	for _, o := range options {
		o(cfg, &opts)
	}

	env.handler = NewHandler(cfg, opts)
	env.handler.now = func() time.Time { return time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC) }

	env.portal = httptest.NewServer(env.handler.Router())
	t.Cleanup(env.portal.Close)

	jar, _ := cookiejar.New(nil)
	env.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return env
}

func (e *testEnv) get(path string) (*http.Response, string) {
	e.t.Helper()
	resp, err := e.client.Get(e.portal.URL + path)
	if err != nil {
		e.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (e *testEnv) post(path string, form url.Values) (*http.Response, string) {
	e.t.Helper()
	resp, err := e.client.PostForm(e.portal.URL+path, form)
	if err != nil {
		e.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// csrfToken loads the login page once so the jar holds a CSRF cookie
func (e *testEnv) csrfToken() string {
	e.t.Helper()
	u, _ := url.Parse(e.portal.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	e.get("/")
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	e.t.Fatal("no CSRF cookie issued")
	return ""
}

func (e *testEnv) login(username, password string) (*http.Response, string) {
	e.t.Helper()
	return e.post("/", url.Values{
		"username":               {username},
		"password":               {password},
		middleware.CSRFFieldName: {e.csrfToken()},
	})
}

func (e *testEnv) authenticated() bool {
	e.t.Helper()
	resp, body := e.get("/api/v1/session")
	if resp.StatusCode != http.StatusOK {
		e.t.Fatalf("session status = %d", resp.StatusCode)
	}
	var info models.SessionInfoResponse
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		e.t.Fatalf("decode session info: %v", err)
	}
	return info.Authenticated
}

func assertRedirect(t *testing.T, resp *http.Response, status int, location string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get("/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var health models.HealthResponse
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.AuthAPI != env.authAPI.URL || health.ResourceAPI != env.resource.URL {
		t.Errorf("health = %+v", health)
	}
	if health.BreakerState != "disabled" || !health.RouteGuard || health.SessionBackend != "memory" {
		t.Errorf("health = %+v", health)
	}
}

func TestHealth_BreakerState(t *testing.T) {
	breaker := services.NewBreaker("resource-api", 3, time.Minute)
	env := newTestEnv(t, func(_ *config.Config, opts *Options) {
		opts.API.Breaker = breaker
	})

	_, body := env.get("/api/v1/health")
	if !strings.Contains(body, `"breaker_state":"closed"`) {
		t.Errorf("body = %s", body)
	}
}

func TestWeatherAPI(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get("/api/v1/weather")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("without login status = %d, want 401", resp.StatusCode)
	}
	if env.apiCalls.Load() != 0 {
		t.Error("no upstream call expected without a token")
	}

	env.login("alice", "pw")

	resp, body := env.get("/api/v1/weather")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var weather models.WeatherResponse
	if err := json.Unmarshal([]byte(body), &weather); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(weather.Entries) != 2 || weather.Entries[1].TemperatureF != 53 {
		t.Errorf("entries = %+v", weather.Entries)
	}
	if env.lastAuth.Load() != "Bearer T1" {
		t.Errorf("upstream Authorization = %v", env.lastAuth.Load())
	}
	if strings.Contains(body, "T1") {
		t.Error("token must never reach the browser")
	}
}

func TestWeatherAPI_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice", "pw")

	env.apiMode.Store(apiFail)
	resp, body := env.get("/api/v1/weather")
	if resp.StatusCode != http.StatusBadGateway || !strings.Contains(body, views.MsgWeatherLoadFailed) {
		t.Errorf("fail mode: status = %d, body = %s", resp.StatusCode, body)
	}

	env.apiMode.Store(apiExpired)
	resp, body = env.get("/api/v1/weather")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expired mode: status = %d", resp.StatusCode)
	}
	var errResp models.ErrorResponse
	json.Unmarshal([]byte(body), &errResp)
	if errResp.Redirect != services.LoginPath {
		t.Errorf("redirect = %q, want %q", errResp.Redirect, services.LoginPath)
	}
	if env.authenticated() {
		t.Error("401 from the resource API must clear the session token")
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get("/does/not/exist")
	assertRedirect(t, resp, http.StatusFound, "/")

	resp, body := env.get("/api/v1/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, `"code":404`) {
		t.Errorf("api 404: status = %d, body = %s", resp.StatusCode, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *Options) {
		cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	})

	req, _ := http.NewRequest(http.MethodOptions, env.portal.URL+"/api/v1/session", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}
