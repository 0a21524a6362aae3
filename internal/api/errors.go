package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for every failed request: transport failures carry
// StatusCode 0, rejected requests carry the HTTP status and the server's
// message when it sent one.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never got an HTTP response.
func (e *Error) Transport() bool {
	return e.StatusCode == 0
}

// ValidationError rejects input before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// MessageOr returns the user-facing message carried by err, or fallback
// when the server did not send one.
func MessageOr(err error, fallback string) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		DefaultMessage string `json:"defaultMessage"`
	} `json:"errors"`
}

func extractMessage(body []byte) string {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return ""
	}
	if m := strings.TrimSpace(p.Message); m != "" {
		return m
	}
	for _, e := range p.Errors {
		if m := strings.TrimSpace(e.DefaultMessage); m != "" {
			return m
		}
	}
	return strings.TrimSpace(p.Error)
}
