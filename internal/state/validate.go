package state

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/docker/go-units"
)

const (
	// MaxConcurrency bounds the configurable download batch width.
	MaxConcurrency = 64

	// minHeap is the smallest heap the JVM accepts for -Xmx.
	minHeap = 2 * units.MiB
)

// ValidateConcurrency validates a download batch width.
// Valid range: 1-64
func ValidateConcurrency(n int) error {
	if n < 1 || n > MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d, got %d", MaxConcurrency, n)
	}
	return nil
}

// ValidateURL validates an http(s) endpoint.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https: %q", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("URL has no host: %q", raw)
	}

	return nil
}

// ValidateMemory validates a memory size string such as "512M", "2G" or
// "4096m", as accepted by docker/go-units.
func ValidateMemory(memory string) error {
	if memory == "" {
		return fmt.Errorf("memory cannot be empty")
	}

	bytes, err := units.RAMInBytes(memory)
	if err != nil {
		return fmt.Errorf("invalid memory format: %q (expected format: 512M, 2G, etc.)", memory)
	}

	if bytes < minHeap {
		return fmt.Errorf("memory must be at least 2M, got %q", memory)
	}

	return nil
}

// HeapFlag converts a memory size into a JVM -Xmx flag in whole megabytes.
func HeapFlag(memory string) (string, error) {
	if err := ValidateMemory(memory); err != nil {
		return "", err
	}

	bytes, _ := units.RAMInBytes(memory)
	return fmt.Sprintf("-Xmx%dM", bytes/units.MiB), nil
}

// ValidateLogLevel validates a log level name.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", level)
	}
}

// ValidateVersion validates a Minecraft version id.
// This is a basic check; the manifest decides whether the version exists.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}

	if strings.ContainsAny(version, " /\\") {
		return fmt.Errorf("version cannot contain spaces or path separators: %q", version)
	}

	if version == "." || version == ".." {
		return fmt.Errorf("invalid version: %q", version)
	}

	return nil
}

// ValidatePlayerName validates a Minecraft player name.
// Rules:
// - Must be 1-16 characters long
// - Must contain only alphanumeric characters and underscores
func ValidatePlayerName(name string) error {
	if name == "" {
		return fmt.Errorf("player name cannot be empty")
	}

	if len(name) > 16 {
		return fmt.Errorf("player name must be 16 characters or less, got %d", len(name))
	}

	for _, ch := range name {
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		isDigit := ch >= '0' && ch <= '9'
		isUnderscore := ch == '_'

		if !isAlpha && !isDigit && !isUnderscore {
			return fmt.Errorf("player name must contain only alphanumeric characters and underscores: %q", name)
		}
	}

	return nil
}

// ValidateRelPath validates a slash-separated path taken from a remote
// document before it is joined below a local directory. It must be relative
// and stay inside that directory.
func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") || strings.Contains(p, ":") {
		return fmt.Errorf("path must be relative: %q", p)
	}

	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path escapes its directory: %q", p)
	}

	return nil
}
