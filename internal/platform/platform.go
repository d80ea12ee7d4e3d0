// Package platform describes the operating system and architecture the
// launcher runs on, and translates them into the identifiers used by the
// game's version documents and by the Java runtime vendor.
package platform

import (
	"errors"
	"fmt"
	goruntime "runtime"
)

// ErrUnsupported is returned when the host OS or architecture has no
// runtime distribution.
var ErrUnsupported = errors.New("unsupported platform")

// Operating systems, named the way runtime directories are named on disk.
const (
	Windows = "windows"
	MacOS   = "macos"
	Linux   = "linux"
)

// Architectures, named the way the game's rules name them.
const (
	X86   = "x86"
	X64   = "x64"
	ARM64 = "arm64"
)

// Platform is the immutable pair of host facts. Construct it once with
// Detect (or New in tests) and pass it to every component that needs it.
type Platform struct {
	OS   string
	Arch string
}

// New builds a Platform from launcher-side names.
func New(os, arch string) (Platform, error) {
	switch os {
	case Windows, MacOS, Linux:
	default:
		return Platform{}, fmt.Errorf("%w: operating system %q", ErrUnsupported, os)
	}

	switch arch {
	case X86, X64, ARM64:
	default:
		return Platform{}, fmt.Errorf("%w: architecture %q", ErrUnsupported, arch)
	}

	return Platform{OS: os, Arch: arch}, nil
}

// Detect returns the Platform of the running process.
func Detect() (Platform, error) {
	return FromGo(goruntime.GOOS, goruntime.GOARCH)
}

// FromGo maps Go's GOOS/GOARCH values onto a Platform.
func FromGo(goos, goarch string) (Platform, error) {
	var os, arch string

	switch goos {
	case "windows":
		os = Windows
	case "darwin":
		os = MacOS
	case "linux":
		os = Linux
	default:
		return Platform{}, fmt.Errorf("%w: operating system %q", ErrUnsupported, goos)
	}

	switch goarch {
	case "386":
		arch = X86
	case "amd64":
		arch = X64
	case "arm64":
		arch = ARM64
	default:
		return Platform{}, fmt.Errorf("%w: architecture %q", ErrUnsupported, goarch)
	}

	return Platform{OS: os, Arch: arch}, nil
}

// String returns "<os>-<arch>", the suffix of runtime directory names.
func (p Platform) String() string {
	return p.OS + "-" + p.Arch
}

// GameOS is the OS name used in version document rules and natives maps.
func (p Platform) GameOS() string {
	if p.OS == MacOS {
		return "osx"
	}
	return p.OS
}

// JavaOS is the OS name used by the runtime distribution API.
func (p Platform) JavaOS() string {
	if p.OS == MacOS {
		return "mac"
	}
	return p.OS
}

// JavaArch is the architecture name used by the runtime distribution API.
func (p Platform) JavaArch() string {
	switch p.Arch {
	case X86:
		return "x32"
	case ARM64:
		return "aarch64"
	}
	return p.Arch
}

// Bitness is substituted for ${arch} in native classifier names.
func (p Platform) Bitness() string {
	if p.Arch == X86 {
		return "32"
	}
	return "64"
}

// PathListSeparator separates classpath entries.
func (p Platform) PathListSeparator() string {
	if p.OS == Windows {
		return ";"
	}
	return ":"
}

// Executable appends the platform's executable suffix to name.
func (p Platform) Executable(name string) string {
	if p.OS == Windows {
		return name + ".exe"
	}
	return name
}
