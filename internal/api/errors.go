package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionInvalidated matches any error caused by a 401 from the API.
	// By the time a caller sees it the session observer has already run.
	ErrSessionInvalidated = errors.New("session invalidated")
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("api unreachable")
)

// Error is a non-2xx response from the API.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is makes a 401 match ErrSessionInvalidated.
func (e *Error) Is(target error) bool {
	return target == ErrSessionInvalidated && e.Status == http.StatusUnauthorized
}

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
