package state

import (
	"fmt"
	"os"
)

// FileLock represents an advisory lock on a file: flock(2) on Unix,
// LockFileEx on Windows. Processes must cooperate by using locks.
type FileLock struct {
	file *os.File
	path string
}

// LockFile acquires an exclusive lock on the specified file, blocking until
// it is available. It creates the file if it doesn't exist.
// The caller must call Unlock() to release the lock.
func LockFile(path string) (*FileLock, error) {
	return lock(path, true)
}

// TryLockFile attempts to acquire an exclusive lock on the specified file.
// Unlike LockFile, it returns immediately if the lock cannot be acquired.
// Returns nil, ErrLockHeld if the lock is already held by another process.
func TryLockFile(path string) (*FileLock, error) {
	return lock(path, false)
}

func lock(path string, wait bool) (*FileLock, error) {
	//nolint:gosec // G304: File path is controlled by application, not user input
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for locking: %w", err)
	}

	if err := lockFile(f, wait); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &FileLock{
		file: f,
		path: path,
	}, nil
}

// Unlock releases the file lock and closes the file.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := unlockFile(fl.file); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if err := fl.file.Close(); err != nil {
		fl.file = nil
		return fmt.Errorf("failed to close file: %w", err)
	}

	fl.file = nil
	return nil
}

// File returns the underlying file descriptor.
// This can be used to read/write the locked file.
func (fl *FileLock) File() *os.File {
	return fl.file
}

// Path returns the path to the locked file.
func (fl *FileLock) Path() string {
	return fl.path
}
