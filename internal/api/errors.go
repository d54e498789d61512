package api

import (
	"errors"
	"fmt"
)

// GenericNetworkError is the user-facing message for transport failures
// that produced no server response.
const GenericNetworkError = "Network error. Please try again."

var (
	// ErrEmptyExport is returned when an export endpoint answers 2xx with a
	// zero-byte body. It must never turn into a saved file.
	ErrEmptyExport = errors.New("export returned an empty file")

	// ErrUnauthenticated is returned for requests issued without a token
	// against endpoints that require one.
	ErrUnauthenticated = errors.New("not authenticated")
)

// APIError is a server-reported business error (4xx/5xx with a message
// body). The message is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsAuthError reports whether err is a 401/403 API error.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// UserMessage maps an error to the string shown to the user: the backend
// message verbatim when present, otherwise the generic network error.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericNetworkError
}
