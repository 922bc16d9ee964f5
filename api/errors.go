package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned when a call needs a token and none is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = payload.Message
		if e.Message == "" {
			if s, ok := payload.Error.(string); ok {
				e.Message = s
			}
		}
	}
	return e
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsPermissionDenied reports a refused write. The backend answers 400 when the
// caller may not change a task's status, 403 elsewhere.
func IsPermissionDenied(err error) bool {
	code := StatusCode(err)
	return code == http.StatusBadRequest || code == http.StatusForbidden
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized || errors.Is(err, ErrNotAuthenticated)
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// MessageOf returns the server message of err when it has one.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
