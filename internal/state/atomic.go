package state

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to a file atomically using a temp file + rename strategy.
// The file is never observed partially written, even if the process is
// interrupted during the write.
//
// The operation works as follows:
//  1. Write data to a temporary file in the same directory
//  2. Sync the temp file to disk (fsync)
//  3. Rename the temp file to the target path (atomic on POSIX systems)
//
// If any step fails, the original file (if it exists) remains unchanged.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	return atomicWriteFrom(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// CopyFile copies src to dst with the same temp file + rename strategy as
// AtomicWrite. src is left in place.
func CopyFile(src, dst string) error {
	//nolint:gosec // G304: File path is controlled by application, not user input
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	return atomicWriteFrom(dst, fi.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// CopyTree recursively copies the directory src to dst, creating dst.
// Symbolic links are recreated, not followed.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return EnsureDir(target)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read link %s: %w", path, err)
			}
			return os.Symlink(link, target)
		default:
			if err := CopyFile(path, target); err != nil {
				return fmt.Errorf("failed to copy %s: %w", rel, err)
			}
			return nil
		}
	})
}

func atomicWriteFrom(path string, perm os.FileMode, write func(io.Writer) error) error {
	// Ensure the parent directory exists
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	// Same directory as the target keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmpFile); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}

	success = true
	return nil
}
