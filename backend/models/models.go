// ABOUTME: Data models for weather forecasts and API responses
// ABOUTME: JSON-serializable structures shared by the portal and the CLI

package models

// WeatherEntry is one forecast day as returned by the resource API
type WeatherEntry struct {
	Date         string  `json:"date"`
	Summary      string  `json:"summary"`
	TemperatureC float64 `json:"temperatureC"`
	TemperatureF float64 `json:"temperatureF"`
}

// WeatherResponse wraps the forecast list served by /api/v1/weather
type WeatherResponse struct {
	Entries []WeatherEntry `json:"entries"`
}

// HealthResponse describes portal configuration and upstream client state
type HealthResponse struct {
	AuthAPI        string `json:"auth_api"`
	ResourceAPI    string `json:"resource_api"`
	SessionBackend string `json:"session_backend"`
	BreakerState   string `json:"breaker_state"`
	RouteGuard     bool   `json:"route_guard"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Code     int    `json:"code"`
}
