package identity

import (
	"errors"
	"fmt"
)

// Error types for player identity lookups.
var (
	ErrUsernameNotFound  = errors.New("username not found")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrAPIUnavailable    = errors.New("mojang API unavailable")
)

// APIError represents an API error with status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mojang API error (status %d): %s", e.StatusCode, e.Message)
}
