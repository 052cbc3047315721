// ABOUTME: Status command: reports whether a token is saved and when it expires
// ABOUTME: Reads the JWT exp claim locally without calling any server

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/icons"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/styles"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/widgets"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sign-in status",
	Long:  `Display whether a token is saved, when it was saved, and its expiry when the token is a JWT.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout, time.Now())
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// sessionStatus is the status command's view of the saved token
type sessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	TokenFile     string     `json:"token_file"`
	SavedAt       *time.Time `json:"saved_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired"`
}

// runStatus inspects the token store and returns exit code
func runStatus(ctx context.Context, w io.Writer, now time.Time) int {
	store := newTokenStore()
	status := sessionStatus{TokenFile: store.Path()}

	if token, ok := store.GetToken(ctx); ok {
		status.Authenticated = true
		if savedAt, ok := store.SavedAt(); ok {
			status.SavedAt = &savedAt
		}
		if exp, ok := services.TokenExpiry(token); ok {
			status.ExpiresAt = &exp
			status.Expired = !now.Before(exp)
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(status))
	} else {
		fmt.Fprintln(w, formatStatusHuman(status, now))
	}

	if !status.Authenticated || status.Expired {
		return exitRuntime
	}
	return exitOK
}

// formatStatusHuman formats status for human readability
func formatStatusHuman(s sessionStatus, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(styles.KeyStyle.Render(icons.Key.String()+" Session") + "\n")
	if !s.Authenticated {
		sb.WriteString(widgets.StatusText("Not signed in", widgets.StatusNeutral) + "\n")
		sb.WriteString(fmt.Sprintf("Token file: %s", s.TokenFile))
		return sb.String()
	}

	switch {
	case s.Expired:
		sb.WriteString(widgets.StatusText("Token expired", widgets.StatusCritical) + "\n")
	case s.ExpiresAt != nil && s.ExpiresAt.Sub(now) < 5*time.Minute:
		sb.WriteString(widgets.StatusText("Token expires soon", widgets.StatusWarning) + "\n")
	default:
		sb.WriteString(widgets.StatusText("Signed in", widgets.StatusOK) + "\n")
	}

	sb.WriteString(fmt.Sprintf("Token file: %s\n", s.TokenFile))
	if s.SavedAt != nil {
		sb.WriteString(fmt.Sprintf("Saved:      %s\n", s.SavedAt.Local().Format(time.RFC1123)))
	}
	if s.ExpiresAt != nil {
		sb.WriteString(fmt.Sprintf("Expires:    %s", s.ExpiresAt.Local().Format(time.RFC1123)))
	} else {
		sb.WriteString("Expires:    unknown (token is not a JWT)")
	}
	return sb.String()
}

// formatStatusJSON formats status as JSON
func formatStatusJSON(s sessionStatus) string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
