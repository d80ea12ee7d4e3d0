package launch

import "errors"

// Error types for composing and running a launch.
var (
	// ErrNoArguments is returned when a spec has neither structured nor
	// legacy arguments.
	ErrNoArguments = errors.New("version spec declares no launch arguments")

	// ErrSpawn is returned when the runtime process cannot be started.
	ErrSpawn = errors.New("failed to start runtime")
)
