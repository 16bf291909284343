package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server supplied explanation, when it sent one.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// messageKeys lists where backends put a human readable error, most specific first.
var messageKeys = []string{"mensaje", "message", "msg", "error"}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    extractMessage(body),
		Body:       body,
	}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
		for _, key := range messageKeys {
			var msg string
			if raw, ok := fields[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
				return msg
			}
		}
		return ""
	}

	var msg string
	if err := json.Unmarshal([]byte(trimmed), &msg); err == nil {
		return msg
	}
	if !strings.HasPrefix(trimmed, "<") && len(trimmed) <= 200 {
		return trimmed
	}
	return ""
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the backend message carried by err, or "".
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsUnauthorized reports whether the backend rejected the credentials of the request.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
