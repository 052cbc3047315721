// ABOUTME: Logout command: removes the saved token
// ABOUTME: No revocation call is made against the authorization server

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/widgets"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the token and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	// Logout never talks to the authorization server, so no URL is needed
	auth := services.NewAuthService(nil, services.AuthServiceConfig{})
	nav := services.NewRecordingNavigator(services.HomePath)

	if err := auth.Logout(ctx, newSessionTokens(), nav); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRuntime
	}

	fmt.Fprintln(w, widgets.StatusText("Signed out", widgets.StatusOK))
	return exitOK
}
