package download

import (
	"crypto/sha1" //nolint:gosec // G505: sha1 names the content, it does not secure it
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/TheDevelo/minelaunch/internal/minecraft"
)

// Verify reports whether path exists, is exactly size bytes long and hashes
// to the hex sha1 digest. The digest compares case-insensitively. Any read
// failure counts as a mismatch.
func Verify(path, sha1Hex string, size int64) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	if fi.Size() != size {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha1.New() //nolint:gosec
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	return strings.EqualFold(hex.EncodeToString(h.Sum(nil)), sha1Hex)
}

// VerifyDownload checks path against a download descriptor.
func VerifyDownload(path string, d minecraft.Download) bool {
	return Verify(path, d.SHA1, d.Size)
}
