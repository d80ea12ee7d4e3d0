// Package jre provisions the Java runtime a version needs into the install
// root, downloading release builds from the Adoptium API.
package jre

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/codeclysm/extract/v4"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

const (
	// DefaultBaseURL is the Adoptium binary endpoint.
	DefaultBaseURL = state.DefaultRuntimeURL

	// LinkedMajor is the first major version provisioned through jlink
	// from a full JDK instead of a prebuilt JRE.
	LinkedMajor = 16
)

// Provisioner installs runtimes below the install root's runtime directory.
type Provisioner struct {
	layout   state.Layout
	fetcher  *download.Fetcher
	platform platform.Platform
	baseURL  string
}

// Config holds provisioner configuration.
type Config struct {
	Layout   state.Layout
	Fetcher  *download.Fetcher
	Platform platform.Platform
	BaseURL  string
}

// NewProvisioner creates a provisioner.
func NewProvisioner(config Config) *Provisioner {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Fetcher == nil {
		config.Fetcher = download.NewFetcher(nil)
	}

	return &Provisioner{
		layout:   config.Layout,
		fetcher:  config.Fetcher,
		platform: config.Platform,
		baseURL:  config.BaseURL,
	}
}

// Name returns the runtime directory name, e.g. "java8-linux-x64".
func (p *Provisioner) Name(major int) string {
	return fmt.Sprintf("java%d-%s", major, p.platform)
}

// Dir returns the runtime directory of major.
func (p *Provisioner) Dir(major int) string {
	return p.layout.RuntimeDir(p.Name(major))
}

// JavaPath returns the java executable of major.
func (p *Provisioner) JavaPath(major int) string {
	return filepath.Join(p.Dir(major), "bin", p.platform.Executable("java"))
}

// DownloadURL returns the Adoptium URL of the latest GA build for major:
// a JRE below 16, a JDK to jlink from otherwise.
func (p *Provisioner) DownloadURL(major int) string {
	imageType := "jre"
	if major >= LinkedMajor {
		imageType = "jdk"
	}

	return fmt.Sprintf("%s/%d/ga/%s/%s/%s/hotspot/normal/eclipse",
		p.baseURL, major, p.platform.JavaOS(), p.platform.JavaArch(), imageType)
}

// Ensure installs the runtime for major unless its directory already
// exists, and returns the directory.
func (p *Provisioner) Ensure(ctx context.Context, major int) (string, error) {
	dir := p.Dir(major)

	if _, err := os.Stat(dir); err == nil {
		slog.Debug("runtime present", "runtime", p.Name(major))
		return dir, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: stat runtime: %v", download.ErrIO, err)
	}

	slog.Info("provisioning runtime", "runtime", p.Name(major), "major", major)

	if err := state.EnsureDir(p.layout.RuntimeRoot()); err != nil {
		return "", fmt.Errorf("%w: %v", download.ErrIO, err)
	}

	// Scratch lives next to the runtime so the final rename stays on one volume
	scratch, err := os.MkdirTemp(p.layout.RuntimeRoot(), ".provision-*")
	if err != nil {
		return "", fmt.Errorf("%w: create scratch directory: %v", download.ErrIO, err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			slog.Warn("failed to remove runtime scratch directory", "path", scratch, "error", err)
		}
	}()

	archive := filepath.Join(scratch, "runtime"+p.archiveExt())
	if err := p.fetcher.Fetch(ctx, download.Item{
		Dest:  archive,
		URL:   p.DownloadURL(major),
		Label: p.Name(major),
	}); err != nil {
		return "", err
	}

	top, err := unpack(ctx, archive, filepath.Join(scratch, "unpacked"))
	if err != nil {
		return "", err
	}

	staging := filepath.Join(scratch, "staging")
	if major >= LinkedMajor {
		err = p.link(ctx, top, staging)
	} else {
		err = p.arrange(top, staging)
	}
	if err != nil {
		return "", err
	}

	if err := os.Rename(staging, dir); err != nil {
		return "", fmt.Errorf("%w: install runtime: %v", download.ErrIO, err)
	}

	slog.Info("runtime installed", "runtime", p.Name(major), "path", dir)
	return dir, nil
}

func (p *Provisioner) archiveExt() string {
	if p.platform.OS == platform.Windows {
		return ".zip"
	}
	return ".tar.gz"
}

// unpack extracts archive into dest and returns its single top-level
// directory.
func unpack(ctx context.Context, archive, dest string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", fmt.Errorf("%w: open archive: %v", download.ErrIO, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := extract.Archive(ctx, f, dest, nil); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("%w: expected one top-level directory, found %d", ErrExtract, len(dirs))
	}

	return filepath.Join(dest, dirs[0]), nil
}

// arrange moves a prebuilt JRE into the runtime layout: bin/ and lib/ at
// the top, with macOS bundles flattened.
func (p *Provisioner) arrange(top, staging string) error {
	switch p.platform.OS {
	case platform.Windows:
		if err := state.CopyTree(top, staging); err != nil {
			return fmt.Errorf("%w: copy runtime: %v", ErrExtract, err)
		}

	case platform.MacOS:
		home := filepath.Join(top, "Contents", "Home")
		if err := os.Rename(home, staging); err != nil {
			return fmt.Errorf("%w: move Contents/Home: %v", ErrExtract, err)
		}

		libjli := filepath.Join(top, "Contents", "MacOS", "libjli.dylib")
		if err := os.Rename(libjli, filepath.Join(staging, "bin", "libjli.dylib")); err != nil {
			return fmt.Errorf("%w: move libjli.dylib: %v", ErrExtract, err)
		}

	default:
		if err := os.Rename(top, staging); err != nil {
			return fmt.Errorf("%w: move runtime: %v", ErrExtract, err)
		}
	}

	return nil
}

// Runtime is an installed runtime directory.
type Runtime struct {
	Name  string `json:"name"`
	Dir   string `json:"dir"`
	Major int    `json:"major"`
	// Platform is the "<os>-<arch>" suffix of the directory name.
	Platform string `json:"platform"`
	// Version is read from the runtime's release file; empty when unknown.
	Version string `json:"version,omitempty"`
}

// Installed lists the runtimes present below the runtime directory.
func (p *Provisioner) Installed() ([]Runtime, error) {
	entries, err := os.ReadDir(p.layout.RuntimeRoot())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list runtimes: %v", download.ErrIO, err)
	}

	var runtimes []Runtime
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		m := runtimeNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		major, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		rt := Runtime{
			Name:     e.Name(),
			Dir:      filepath.Join(p.layout.RuntimeRoot(), e.Name()),
			Major:    major,
			Platform: m[2],
		}
		if v, err := InstalledVersion(rt.Dir); err == nil {
			rt.Version = v.Original()
		} else {
			slog.Debug("runtime has no readable release file", "runtime", rt.Name, "error", err)
		}

		runtimes = append(runtimes, rt)
	}

	return runtimes, nil
}
