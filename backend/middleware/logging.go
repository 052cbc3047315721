// ABOUTME: HTTP request logging middleware with request IDs
// ABOUTME: Logs request start/end with method, path, status, and latency

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LogRequest logs HTTP requests with timing and a request ID.
// An incoming X-Request-ID that parses as a UUID is reused.
func LogRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := requestIDFrom(r)

		w.Header().Set(RequestIDHeader, requestID)

		path := sanitizePath(r.URL.Path)

		slog.Info("Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", path,
		)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		next(wrapped, r.WithContext(ctx))

		slog.Info("Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", path,
			"status", wrapped.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RequestID returns the id assigned by LogRequest, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// sanitizePath drops control characters so a crafted path cannot forge log lines
func sanitizePath(path string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, path)
}

func requestIDFrom(r *http.Request) string {
	if incoming := r.Header.Get(RequestIDHeader); incoming != "" {
		if _, err := uuid.Parse(incoming); err == nil {
			return incoming
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
