// ABOUTME: Tests for weather and API response models
// ABOUTME: Verifies the resource API field names and error response shape

package models

import (
	"encoding/json"
	"testing"
)

func TestWeatherEntry_JSON(t *testing.T) {
	body := `[{"date":"2026-10-20","summary":"Mild","temperatureC":18.5,"temperatureF":65}]`

	var entries []WeatherEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Date != "2026-10-20" || e.Summary != "Mild" {
		t.Errorf("entry = %+v", e)
	}
	if e.TemperatureC != 18.5 || e.TemperatureF != 65 {
		t.Errorf("temperatures = %v / %v", e.TemperatureC, e.TemperatureF)
	}
}

func TestWeatherEntry_MissingFields(t *testing.T) {
	var e WeatherEntry
	if err := json.Unmarshal([]byte(`{"date":"2026-10-20"}`), &e); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if e.Summary != "" || e.TemperatureC != 0 || e.TemperatureF != 0 {
		t.Errorf("expected zero values, got %+v", e)
	}
}

func TestErrorResponse_OmitsEmpty(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: "Authentication required", Code: 401})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	want := `{"error":"Authentication required","code":401}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
