// ABOUTME: Tests for the login command
// ABOUTME: Covers the password grant, interactive prompt, and Microsoft loopback callback

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/loginform"
)

func TestLogin_Success(t *testing.T) {
	store := isolate(t)
	calls := fakeAuthServer(t)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, "alice", "pw", false)

	if exitCode != 0 {
		t.Fatalf("exit code = %d, output = %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Signed in as alice") {
		t.Errorf("output = %q", buf.String())
	}
	if token, ok := store.GetToken(context.Background()); !ok || token != "T1" {
		t.Errorf("saved token = %q, %v", token, ok)
	}
	if calls.Load() != 1 {
		t.Errorf("auth calls = %d, want 1", calls.Load())
	}
}

func TestLogin_JSON(t *testing.T) {
	isolate(t)
	fakeAuthServer(t)
	jsonOutput = true

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "alice", "pw", false); exitCode != 0 {
		t.Fatalf("exit code = %d", exitCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["authenticated"] != true || parsed["token_type"] != "Bearer" {
		t.Errorf("parsed = %v", parsed)
	}
	if strings.Contains(buf.String(), "T1") {
		t.Error("token must not be printed")
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		wantCode  int
		wantMsg   string
		wantCalls int32
	}{
		{"bad password", "alice", "wrong", 2, views.MsgLoginFailed, 1},
		{"missing password", "alice", "", 1, services.MsgFillBothFields, 0},
		{"blank username", "  ", "pw", 1, services.MsgFillBothFields, 0},
		{"padded username sent as typed", " alice ", "pw", 2, views.MsgLoginFailed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := isolate(t)
			calls := fakeAuthServer(t)

			var buf bytes.Buffer
			exitCode := runLogin(context.Background(), &buf, tt.username, tt.password, false)

			if exitCode != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitCode, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.wantMsg) {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantMsg)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("auth calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
			if _, ok := store.GetToken(context.Background()); ok {
				t.Error("no token should be saved")
			}
		})
	}
}

func TestLogin_MissingAuthURL(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "alice", "pw", false); exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
}

func TestLogin_Prompt(t *testing.T) {
	store := isolate(t)
	fakeAuthServer(t)

	original := promptCredentials
	defer func() { promptCredentials = original }()

	var prefilled string
	promptCredentials = func(ctx context.Context, username string) (models.LoginRequest, error) {
		prefilled = username
		return models.LoginRequest{Username: "alice", Password: "pw"}, nil
	}

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "alice", "", true); exitCode != 0 {
		t.Fatalf("exit code = %d, output = %s", exitCode, buf.String())
	}
	if prefilled != "alice" {
		t.Errorf("prompt prefill = %q", prefilled)
	}
	if _, ok := store.GetToken(context.Background()); !ok {
		t.Error("token should be saved after prompted login")
	}
}

func TestLogin_PromptCancelled(t *testing.T) {
	isolate(t)
	calls := fakeAuthServer(t)

	original := promptCredentials
	defer func() { promptCredentials = original }()
	promptCredentials = func(ctx context.Context, username string) (models.LoginRequest, error) {
		return models.LoginRequest{}, loginform.ErrCancelled
	}

	var buf bytes.Buffer
	if exitCode := runLogin(context.Background(), &buf, "", "", true); exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
	if calls.Load() != 0 {
		t.Error("cancelled prompt must not call the authorization server")
	}
}

// microsoftLogin runs the loopback flow and follows the provider URL with query
func microsoftLogin(t *testing.T, query url.Values) (int, string) {
	t.Helper()

	original := openBrowser
	defer func() { openBrowser = original }()

	urls := make(chan string, 1)
	openBrowser = func(w io.Writer, loginURL string) { urls <- loginURL }

	var buf bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- runMicrosoftLogin(context.Background(), &buf, "127.0.0.1:0", 5*time.Second)
	}()

	var loginURL string
	select {
	case loginURL = <-urls:
	case <-time.After(5 * time.Second):
		t.Fatal("login URL never produced")
	}

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("parse login URL: %v", err)
	}
	if parsed.Path != "/Account/ExternalLogin" || parsed.Query().Get("provider") != "Microsoft" {
		t.Errorf("login URL = %s", loginURL)
	}

	callback := parsed.Query().Get("returnUrl")
	if !strings.HasSuffix(callback, services.CallbackPath) {
		t.Fatalf("returnUrl = %q", callback)
	}

	resp, err := http.Get(callback + "?" + query.Encode())
	if err != nil {
		t.Fatalf("callback request: %v", err)
	}
	resp.Body.Close()

	select {
	case code := <-done:
		return code, buf.String()
	case <-time.After(5 * time.Second):
		t.Fatal("login did not finish")
		return -1, ""
	}
}

func TestMicrosoftLogin_Success(t *testing.T) {
	store := isolate(t)
	fakeAuthServer(t)

	code, output := microsoftLogin(t, url.Values{"access_token": {"T1"}, "returnUrl": {"/dashboard"}})

	if code != 0 {
		t.Fatalf("exit code = %d, output = %s", code, output)
	}
	if token, ok := store.GetToken(context.Background()); !ok || token != "T1" {
		t.Errorf("saved token = %q, %v", token, ok)
	}
}

func TestMicrosoftLogin_ProviderError(t *testing.T) {
	store := isolate(t)
	fakeAuthServer(t)

	code, output := microsoftLogin(t, url.Values{"error": {"access_denied"}})

	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(output, views.MsgExternalLoginFailed) {
		t.Errorf("output = %q", output)
	}
	if _, ok := store.GetToken(context.Background()); ok {
		t.Error("failed callback must not save a token")
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if isTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
}
