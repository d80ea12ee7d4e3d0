package download

import (
	"errors"
	"fmt"
)

// Error types for download operations.
var (
	// ErrTransport is returned when a resource could not be retrieved: the
	// host was unreachable, the connection failed or the server answered
	// with a non-2xx status.
	ErrTransport = errors.New("transport failure")

	// ErrIO is returned when the local filesystem rejects a write, rename or
	// directory creation.
	ErrIO = errors.New("filesystem failure")

	// ErrIntegrity is returned when a freshly downloaded file still fails
	// verification after a retry.
	ErrIntegrity = errors.New("integrity mismatch")
)

// StatusError records a non-2xx response. It matches ErrTransport with
// errors.Is.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.StatusCode, e.URL)
}

// Is reports ErrTransport as the error's category.
func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}
