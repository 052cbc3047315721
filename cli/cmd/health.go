// ABOUTME: Health command: checks a running portal
// ABOUTME: Reports upstream URLs, session backend, and circuit breaker state

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/cli/internal/client"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/widgets"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check portal connectivity",
	Long:  `Check connectivity to a running weather portal and show its upstream configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	healthCmd.Flags().StringVar(&portalURL, "portal-url", "", "Portal URL (overrides WEATHER_PORTAL_URL)")
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetPortalURL()
	c := client.New(url)

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitRuntime
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}

	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *models.HealthResponse) string {
	breaker := widgets.StatusText(resp.BreakerState, breakerLevel(resp.BreakerState))
	return fmt.Sprintf(`Portal:       %s
Auth API:     %s
Resource API: %s
Sessions:     %s
Route guard:  %t
Breaker:      %s`, url, resp.AuthAPI, resp.ResourceAPI, resp.SessionBackend, resp.RouteGuard, breaker)
}

func breakerLevel(state string) widgets.StatusLevel {
	switch state {
	case "closed":
		return widgets.StatusOK
	case "half-open":
		return widgets.StatusWarning
	case "open":
		return widgets.StatusCritical
	default:
		return widgets.StatusNeutral
	}
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *models.HealthResponse) string {
	output := map[string]interface{}{
		"portal": url,
		"health": resp,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
