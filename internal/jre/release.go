package jre

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

var runtimeNamePattern = regexp.MustCompile(`^java(\d+)-([a-z]+-[a-z0-9]+)$`)

// InstalledVersion reads JAVA_VERSION from the release file of the runtime
// at dir. Legacy "1.8.0_292" versions parse with the update number as build
// metadata.
func InstalledVersion(dir string) (*version.Version, error) {
	f, err := os.Open(filepath.Join(dir, "release"))
	if err != nil {
		return nil, fmt.Errorf("open release file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(key) != "JAVA_VERSION" {
			continue
		}

		raw := strings.Trim(strings.TrimSpace(value), `"`)
		v, err := version.NewVersion(strings.Replace(raw, "_", "+", 1))
		if err != nil {
			return nil, fmt.Errorf("parse JAVA_VERSION %q: %w", raw, err)
		}
		return v, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read release file: %w", err)
	}

	return nil, fmt.Errorf("release file has no JAVA_VERSION")
}

// FeatureRelease returns the major version of v: 8 for "1.8.0", 17 for
// "17.0.2".
func FeatureRelease(v *version.Version) int {
	segments := v.Segments()
	if len(segments) >= 2 && segments[0] == 1 {
		return segments[1]
	}
	return segments[0]
}
