// ABOUTME: Weather data access through the protected resource client
// ABOUTME: Returns the forecast list or a no-data marker; failures are logged, never raised

package services

import (
	"context"
	"log/slog"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// WeatherForecastPath is the resource API forecast endpoint
const WeatherForecastPath = "/WeatherForecast"

// JSONGetter is the slice of ProtectedClient used for reads
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// weatherWire accepts responses that omit temperatureF
type weatherWire struct {
	Date         string   `json:"date"`
	Summary      string   `json:"summary"`
	TemperatureC float64  `json:"temperatureC"`
	TemperatureF *float64 `json:"temperatureF"`
}

// GetWeather fetches the forecast. ok=false is the no-data marker; an empty
// list with ok=true means the API answered with no entries.
func GetWeather(ctx context.Context, client JSONGetter) ([]models.WeatherEntry, bool) {
	var wire []weatherWire
	if err := client.GetJSON(ctx, WeatherForecastPath, &wire); err != nil {
		slog.Error("Error fetching weather data", "error", err)
		return nil, false
	}
	if wire == nil {
		slog.Warn("Weather endpoint returned null")
		return nil, false
	}

	entries := make([]models.WeatherEntry, 0, len(wire))
	for _, w := range wire {
		entry := models.WeatherEntry{
			Date:         w.Date,
			Summary:      w.Summary,
			TemperatureC: w.TemperatureC,
		}
		if w.TemperatureF != nil {
			entry.TemperatureF = *w.TemperatureF
		} else {
			entry.TemperatureF = fahrenheit(w.TemperatureC)
		}
		entries = append(entries, entry)
	}

	return entries, true
}

// fahrenheit mirrors the resource API's own conversion
func fahrenheit(c float64) float64 {
	return float64(32 + int(c/0.5556))
}
