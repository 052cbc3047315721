// ABOUTME: Error taxonomy shared by the auth, callback, and resource clients
// ABOUTME: Sentinel errors for errors.Is plus typed errors carrying details

package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks credential input rejected before any network call
	ErrValidation = errors.New("validation failed")
	// ErrAuthenticationFailed marks a non-2xx or unreachable token endpoint
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrUnauthorized marks a 401 from the resource API; the token has been cleared
	ErrUnauthorized = errors.New("session expired")
	// ErrCircuitOpen marks a call rejected while the resource API breaker is open
	ErrCircuitOpen = errors.New("resource api unavailable")
	// ErrSessionNotFound is returned by session stores for unknown or expired ids
	ErrSessionNotFound = errors.New("session not found")
)

// StatusError carries a non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// ValidationError lists field-level messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
