// ABOUTME: Root command for the weather-portal CLI
// ABOUTME: Handles global flags, environment fallbacks, and logging setup

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/logger"
	"github.com/galaxy-weather/weather-portal/cli/internal/tokenstore"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK      = 0
	exitUsage   = 1 // bad flags or validation failure
	exitRuntime = 2 // upstream failure or no data
)

var (
	authURL    string
	apiURL     string
	portalURL  string
	configDir  string
	jsonOutput bool
	timeout    time.Duration
)

const defaultPortalURL = "http://localhost:8080"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "weather-portal",
	Short: "Terminal client for the Galaxy weather portal",
	Long: `weather-portal signs in against the authorization server and shows the
weather forecast from the protected resource API.

The token is kept in the user's config directory and reused across runs.

Environment Variables:
  WEATHER_PORTAL_AUTH_URL  Authorization server URL
  WEATHER_PORTAL_API_URL   Resource API URL
  WEATHER_PORTAL_URL       Portal URL for the health command (default: http://localhost:8080)
  LOG_LEVEL                debug, info, warn, error (default: warn)
  LOG_FORMAT               text or json`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		slog.SetDefault(logger.New(os.Stderr, level, os.Getenv("LOG_FORMAT")))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authURL, "auth-url", "", "Authorization server URL (overrides WEATHER_PORTAL_AUTH_URL)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Resource API URL (overrides WEATHER_PORTAL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding the saved token (default: $XDG_CONFIG_HOME/weather-portal)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for each upstream request")
}

// flagOrEnv returns the flag value, then the environment variable, then def
func flagOrEnv(flag, env, def string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// GetAuthURL returns the authorization server URL from flag or env
func GetAuthURL() (string, error) {
	url := flagOrEnv(authURL, "WEATHER_PORTAL_AUTH_URL", "")
	if url == "" {
		return "", fmt.Errorf("authorization server URL not set (use --auth-url or WEATHER_PORTAL_AUTH_URL)")
	}
	return url, nil
}

// GetAPIURL returns the resource API URL from flag or env
func GetAPIURL() (string, error) {
	url := flagOrEnv(apiURL, "WEATHER_PORTAL_API_URL", "")
	if url == "" {
		return "", fmt.Errorf("resource API URL not set (use --api-url or WEATHER_PORTAL_API_URL)")
	}
	return url, nil
}

// GetPortalURL returns the portal URL from flag, env, or default (in priority order)
func GetPortalURL() string {
	return flagOrEnv(portalURL, "WEATHER_PORTAL_URL", defaultPortalURL)
}

// GetConfigDir returns the token directory from flag or the XDG default
func GetConfigDir() string {
	if configDir != "" {
		return configDir
	}
	return tokenstore.DefaultConfigDir()
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
