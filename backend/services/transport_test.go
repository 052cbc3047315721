// ABOUTME: Tests for transport construction and proxy URL parsing
// ABOUTME: Covers ssh+socks5 validation without opening an SSH connection

package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewTransport_NoProxy(t *testing.T) {
	tr, err := NewTransport("")
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if tr == nil {
		t.Fatal("expected a transport")
	}
	if tr.Proxy == nil {
		t.Error("without API_ALL_PROXY the environment proxy setting should be kept")
	}
}

func TestNewTransport_ProxyErrors(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("not really a key"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		proxy   string
		wantErr string
	}{
		{"wrong scheme", "ssh+http://jump@host:22?private-key=" + keyPath, "ssh+socks5://"},
		{"missing key param", "ssh+socks5://jump@host:22", "private-key"},
		{"unreadable key", "ssh+socks5://jump@host:22?private-key=/does/not/exist", "read SSH private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransport(tt.proxy)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewTransport_ProxyConfigured(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("key"), 0o600); err != nil {
		t.Fatal(err)
	}

	tr, err := NewTransport("ssh+socks5://jump@host:22?private-key=" + keyPath)
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	if tr.DialContext == nil {
		t.Error("expected SOCKS5 DialContext")
	}
	if tr.Proxy != nil {
		t.Error("environment proxy should be disabled when tunneling")
	}
}

func TestPathOnly(t *testing.T) {
	tests := map[string]string{
		"/":                             "/",
		"/dashboard":                    "/dashboard",
		"/?error=external_login_failed": "/",
		"/home#top":                     "/home",
		"":                              "",
	}
	for in, want := range tests {
		if got := pathOnly(in); got != want {
			t.Errorf("pathOnly(%q) = %q, want %q", in, got, want)
		}
	}
}
