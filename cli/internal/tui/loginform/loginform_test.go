// ABOUTME: Tests for the interactive login prompt
// ABOUTME: Covers field validation and theme construction without a terminal

package loginform

import (
	"testing"

	"github.com/galaxy-weather/weather-portal/backend/services"
)

func TestNotBlank(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"alice", false},
		{"  pw ", false},
		{"", true},
		{"   ", true},
		{"\t\n", true},
	}

	for _, tt := range tests {
		err := notBlank(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("notBlank(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && err.Error() != services.MsgFillBothFields {
			t.Errorf("message = %q", err.Error())
		}
	}
}

func TestNew_Prefill(t *testing.T) {
	f := New("alice")
	if f.username != "alice" {
		t.Errorf("username = %q, want prefilled", f.username)
	}
	if f.form == nil {
		t.Fatal("form not built")
	}
	if createTheme() == nil {
		t.Error("theme should not be nil")
	}
}
