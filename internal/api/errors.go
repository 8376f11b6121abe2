package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is returned after the interceptor invalidated the session
	ErrUnauthorized = errors.New("session expired. Please login again")

	// ErrTransport wraps failures to reach the service at all
	ErrTransport = errors.New("connection error")
)

// Error is a non-2xx response from the service
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

func newError(status int, body []byte) *Error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Error
		if message == "" {
			message = payload.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &Error{Status: status, Message: message}
}

// Message extracts a human-readable message from err, or "" when err is not
// a service response
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
