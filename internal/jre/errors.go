package jre

import "errors"

// Error types for runtime provisioning.
var (
	// ErrExtract is returned when a runtime archive cannot be unpacked or
	// does not have the expected shape.
	ErrExtract = errors.New("runtime extraction failed")

	// ErrLink is returned when jlink cannot build a runtime image.
	ErrLink = errors.New("runtime link failed")
)
