package validate

import (
	"errors"
	"fmt"
)

// Common errors returned by validation sources.
var (
	// ErrNotFound indicates the service does not know the identifier.
	ErrNotFound = errors.New("identifier not found")

	// ErrUnsupportedType indicates the source cannot validate this
	// identifier type (e.g. Crossref knows nothing about PMIDs).
	ErrUnsupportedType = errors.New("identifier type not supported by source")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error during validation")

	// ErrInvalidResponse indicates an unexpected service response.
	ErrInvalidResponse = errors.New("invalid response from validation service")
)

// APIError represents an error response from a validation service.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates the identifier was
// not found by the service.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
