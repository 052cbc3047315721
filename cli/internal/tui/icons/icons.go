// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("WEATHER_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	nerdFontTerminals := []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Status indicators
	CheckOK  = Icon{"\uf058", "✓"} // nf-fa-check_circle
	Warning  = Icon{"\uf071", "⚠"} // nf-fa-warning
	Critical = Icon{"\uf057", "✗"} // nf-fa-times_circle
	Info     = Icon{"\uf05a", "ℹ"} // nf-fa-info_circle

	// Weather
	Sun         = Icon{"󰖙", "☀"} // nf-md-weather_sunny
	Thermometer = Icon{"󰔏", "°"} // nf-md-thermometer
	Calendar    = Icon{"󰃭", "▦"} // nf-md-calendar

	// Session
	Key  = Icon{"󰌆", "⚷"} // nf-md-key
	Lock = Icon{"󰌾", "▣"} // nf-md-lock
)
