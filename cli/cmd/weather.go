// ABOUTME: Weather command: shows the forecast from the protected resource API
// ABOUTME: Prints cards, JSON, or an interactive view; a rejected token is cleared

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/forecast"
	"github.com/spf13/cobra"
)

var weatherInteractive bool

// msgSessionExpired is printed when the resource API rejects the token
const msgSessionExpired = "Session expired. Run 'weather-portal login' to sign in again."

// msgNotSignedIn is printed when no token is saved
const msgNotSignedIn = "Not signed in. Run 'weather-portal login' first."

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the weather forecast",
	Long:  `Fetch the forecast from the protected resource API using the saved token.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		exitCode := runWeather(ctx, os.Stdout, weatherInteractive)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	weatherCmd.Flags().BoolVarP(&weatherInteractive, "interactive", "i", false, "Interactive view with reload")
	rootCmd.AddCommand(weatherCmd)
}

// runWeather fetches the forecast and returns exit code
func runWeather(ctx context.Context, w io.Writer, interactive bool) int {
	store := newSessionTokens()
	if _, ok := store.GetToken(ctx); !ok {
		fmt.Fprintln(w, msgNotSignedIn)
		return exitRuntime
	}

	nav := services.NewRecordingNavigator(services.DashboardPath)
	client, err := newWeatherClient(store, nav)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}

	fetch := func(ctx context.Context) ([]models.WeatherEntry, bool) {
		return services.GetWeather(ctx, client)
	}

	if interactive && !IsJSONOutput() {
		loaded, err := forecast.Run(ctx, fetch, time.Now)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitRuntime
		}
		if _, navigated := nav.Target(); navigated {
			fmt.Fprintln(w, msgSessionExpired)
			return exitRuntime
		}
		if !loaded {
			return exitRuntime
		}
		return exitOK
	}

	entries, ok := fetch(ctx)
	if _, navigated := nav.Target(); navigated {
		fmt.Fprintln(w, msgSessionExpired)
		return exitRuntime
	}
	if !ok {
		fmt.Fprintln(w, views.MsgNoWeatherData)
		return exitRuntime
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWeatherJSON(entries))
	} else {
		fmt.Fprintln(w, forecast.Render(views.BuildCards(entries, time.Now()), forecast.DefaultPerRow))
	}
	return exitOK
}

// formatWeatherJSON formats entries the same way as the portal's JSON API
func formatWeatherJSON(entries []models.WeatherEntry) string {
	data, _ := json.MarshalIndent(models.WeatherResponse{Entries: entries}, "", "  ")
	return string(data)
}
