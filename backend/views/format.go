// ABOUTME: Forecast card formatting: Spanish (Peru) short dates, today detection, rounding
// ABOUTME: Mirrors what browsers print for es-PE with weekday, 2-digit day, short month, year

package views

import (
	"math"
	"strconv"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
)

// Messages shown on the login and dashboard pages
const (
	MsgLoginFailed         = "Error en login. Por favor, intenta nuevamente."
	MsgExternalLoginFailed = "Error al iniciar sesión con Microsoft. Por favor, intenta nuevamente."
	MsgNoWeatherData       = "No se encontraron datos de clima."
	MsgWeatherLoadFailed   = "No se pudo cargar el clima. Intenta nuevamente."
	MsgNoSummary           = "Sin descripción"
)

var (
	weekdaysES = [...]string{"dom.", "lun.", "mar.", "mié.", "jue.", "vie.", "sáb."}
	monthsES   = [...]string{"ene.", "feb.", "mar.", "abr.", "may.", "jun.", "jul.", "ago.", "set.", "oct.", "nov.", "dic."}
)

// Card is one rendered forecast day
type Card struct {
	Date    string
	Summary string
	TempC   string
	TempF   string
	Today   bool
}

// BuildCards formats entries for display relative to now
func BuildCards(entries []models.WeatherEntry, now time.Time) []Card {
	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		summary := e.Summary
		if summary == "" {
			summary = MsgNoSummary
		}
		cards = append(cards, Card{
			Date:    FormatDate(e.Date, now.Location()),
			Summary: summary,
			TempC:   RoundTemp(e.TemperatureC),
			TempF:   RoundTemp(e.TemperatureF),
			Today:   IsToday(e.Date, now),
		})
	}
	return cards
}

// parseDate accepts date-only values as calendar dates in loc and
// timestamps in RFC 3339 or without a zone.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders raw as "lun., 20 oct. 2026". Unparseable input is returned unchanged.
func FormatDate(raw string, loc *time.Location) string {
	t, ok := parseDate(raw, loc)
	if !ok {
		return raw
	}

	day := strconv.Itoa(t.Day())
	if len(day) == 1 {
		day = "0" + day
	}
	return weekdaysES[t.Weekday()] + ", " + day + " " + monthsES[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// IsToday reports whether raw falls on now's calendar date
func IsToday(raw string, now time.Time) bool {
	t, ok := parseDate(raw, now.Location())
	if !ok {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// RoundTemp rounds half away from zero with no decimals
func RoundTemp(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // avoid "-0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}
