package minecraft

import "errors"

// Error types for version document handling.
var (
	// ErrParse is returned when a manifest, version spec or asset index
	// cannot be decoded.
	ErrParse = errors.New("malformed document")

	// ErrVersionNotFound is returned when the manifest has no entry for the
	// requested version id.
	ErrVersionNotFound = errors.New("version not found")

	// ErrUnavailable is returned when the version manifest cannot be
	// retrieved.
	ErrUnavailable = errors.New("version manifest unavailable")
)
