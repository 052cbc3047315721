// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Init() wires the default logger from LOG_LEVEL and LOG_FORMAT for both binaries.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger based on environment variables.
// LOG_LEVEL: debug, info, warn, error (default: info)
// LOG_FORMAT: text, json (default: text)
func Init() {
	slog.SetDefault(New(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")))
}

// New builds a logger writing to w. The CLI passes os.Stderr so command
// output on stdout stays machine-readable.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
