package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppDirName is the directory name used below the XDG config and data
	// homes.
	AppDirName = "minelaunch"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"

	// LockFileName is the advisory lock serializing attempts on one root.
	LockFileName = ".minelaunch.lock"

	// Subdirectory names of an install root.
	VersionsSubdir  = "versions"
	LibrariesSubdir = "libraries"
	AssetsSubdir    = "assets"
	ResourcesSubdir = "resources"
	RuntimeSubdir   = "runtime"
)

// GetConfigDir returns the path to the minelaunch configuration directory,
// $XDG_CONFIG_HOME/minelaunch, defaulting to ~/.config/minelaunch.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, AppDirName), nil
}

// GetConfigPath returns the path to the main configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetDataDir returns the default install root, $XDG_DATA_HOME/minelaunch,
// defaulting to ~/.local/share/minelaunch.
func GetDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataHome, AppDirName), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", path, err)
	}
	return nil
}

// Layout names every location inside an install root.
//
//	versions/<id>/<id>.json, versions/<id>/<id>.jar
//	libraries/<path>
//	assets/indexes/<name>.json, assets/objects/<hh>/<hash>
//	assets/virtual/<name>/<logical>, resources/<logical>
//	runtime/java<major>-<os>-<arch>/
type Layout struct {
	Root string
}

// NewLayout returns the layout of root, made absolute.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to resolve install directory %s: %w", root, err)
	}
	return Layout{Root: abs}, nil
}

// VersionDir returns versions/<id>.
func (l Layout) VersionDir(id string) string {
	return filepath.Join(l.Root, VersionsSubdir, id)
}

// SpecPath returns versions/<id>/<id>.json.
func (l Layout) SpecPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".json")
}

// ClientJarPath returns versions/<id>/<id>.jar.
func (l Layout) ClientJarPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".jar")
}

// LibrariesDir returns libraries/.
func (l Layout) LibrariesDir() string {
	return filepath.Join(l.Root, LibrariesSubdir)
}

// LibraryPath returns libraries/<rel> for a slash-separated relative path.
func (l Layout) LibraryPath(rel string) string {
	return filepath.Join(l.LibrariesDir(), filepath.FromSlash(rel))
}

// AssetsDir returns assets/.
func (l Layout) AssetsDir() string {
	return filepath.Join(l.Root, AssetsSubdir)
}

// IndexPath returns assets/indexes/<name>.json.
func (l Layout) IndexPath(name string) string {
	return filepath.Join(l.AssetsDir(), "indexes", name+".json")
}

// ObjectPath returns assets/objects/<rel> for an "hh/hash" path.
func (l Layout) ObjectPath(rel string) string {
	return filepath.Join(l.AssetsDir(), "objects", filepath.FromSlash(rel))
}

// VirtualDir returns assets/virtual/<name>.
func (l Layout) VirtualDir(name string) string {
	return filepath.Join(l.AssetsDir(), "virtual", name)
}

// ResourcesDir returns resources/.
func (l Layout) ResourcesDir() string {
	return filepath.Join(l.Root, ResourcesSubdir)
}

// RuntimeRoot returns runtime/.
func (l Layout) RuntimeRoot() string {
	return filepath.Join(l.Root, RuntimeSubdir)
}

// RuntimeDir returns runtime/<name>.
func (l Layout) RuntimeDir(name string) string {
	return filepath.Join(l.RuntimeRoot(), name)
}

// LockPath returns the install lock file.
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, LockFileName)
}

// Init creates the top-level directories of the install root.
func (l Layout) Init() error {
	dirs := []string{
		l.Root,
		filepath.Join(l.Root, VersionsSubdir),
		l.LibrariesDir(),
		l.AssetsDir(),
		l.RuntimeRoot(),
	}

	for _, dir := range dirs {
		if err := EnsureDir(dir); err != nil {
			return err
		}
	}

	return nil
}
