package state

import "errors"

// ErrLockHeld is returned when TryLockFile cannot acquire a lock
// because it is already held by another process.
var ErrLockHeld = errors.New("lock is held by another process")
