// Package launch composes the runtime command line of a resolved version
// and runs it.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/codeclysm/extract/v4"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/env"
	"github.com/TheDevelo/minelaunch/internal/install"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// Legacy JVM flags for specs without structured arguments.
const (
	windowsHeapDumpFlag = "-XX:HeapDumpPath=MojangTricksIntelDriversForPerformance_javaw.exe_minecraft.exe.heapdump"
	macFirstThreadFlag  = "-XstartOnFirstThread"
	x86StackFlag        = "-Xss1M"
)

// Composer builds the command line of a version from its spec and the
// libraries materialized in layout.
type Composer struct {
	layout   state.Layout
	platform platform.Platform
	// heapFlag is prepended to the JVM arguments when non-empty.
	heapFlag string
}

// NewComposer creates a composer. memory is a heap size such as "4GiB";
// empty leaves the runtime default.
func NewComposer(layout state.Layout, p platform.Platform, memory string) (*Composer, error) {
	c := &Composer{layout: layout, platform: p}

	if memory != "" {
		flag, err := state.HeapFlag(memory)
		if err != nil {
			return nil, err
		}
		c.heapFlag = flag
	}

	return c, nil
}

// Classpath returns the absolute classpath entries of spec: every selected
// library artifact in spec order, then the client jar.
func (c *Composer) Classpath(spec *minecraft.VersionSpec, set install.LibrarySet) []string {
	entries := make([]string, 0, len(set.Artifacts)+1)
	for _, lib := range set.Artifacts {
		entries = append(entries, c.layout.LibraryPath(lib.Path))
	}
	return append(entries, c.layout.ClientJarPath(spec.ID))
}

// Templates returns the unresolved argument list of spec: the JVM
// arguments, the main class, then the game arguments.
func (c *Composer) Templates(spec *minecraft.VersionSpec) ([]string, error) {
	var args []string
	if c.heapFlag != "" {
		args = append(args, c.heapFlag)
	}

	switch {
	case spec.Arguments != nil:
		args = append(args, c.evaluate(spec.Arguments.JVM)...)
		args = append(args, spec.MainClass)
		args = append(args, c.evaluate(spec.Arguments.Game)...)

	case spec.MinecraftArguments != nil:
		args = append(args, c.legacyJVMArguments(spec)...)
		args = append(args, spec.MainClass)
		args = append(args, strings.Fields(*spec.MinecraftArguments)...)

	default:
		return nil, fmt.Errorf("%w: %s", ErrNoArguments, spec.ID)
	}

	return args, nil
}

func (c *Composer) evaluate(arguments []minecraft.Argument) []string {
	var out []string
	for _, arg := range arguments {
		if !arg.IsConditional() {
			out = append(out, arg.Literal)
			continue
		}
		if minecraft.RulesSatisfied(arg.Conditional.Rules, c.platform, nil) {
			out = append(out, arg.Conditional.Value.Values...)
		}
	}
	return out
}

func (c *Composer) legacyJVMArguments(spec *minecraft.VersionSpec) []string {
	var args []string
	switch c.platform.OS {
	case platform.Windows:
		args = append(args, windowsHeapDumpFlag)
	case platform.MacOS:
		args = append(args, macFirstThreadFlag)
	}
	if c.platform.Arch == platform.X86 {
		args = append(args, x86StackFlag)
	}

	return append(args,
		"-Djava.library.path=${natives_directory}",
		"-Dminecraft.launcher.brand=${launcher_name}",
		"-Dminecraft.launcher.version=${launcher_version}",
		"-Dminecraft.client.jar="+c.layout.ClientJarPath(spec.ID),
		"-cp",
		"${classpath}",
	)
}

// Compose binds the classpath and natives directory into environment, then
// resolves every argument template against it.
func (c *Composer) Compose(spec *minecraft.VersionSpec, set install.LibrarySet, nativesDir string, environment *env.Environment) ([]string, error) {
	templates, err := c.Templates(spec)
	if err != nil {
		return nil, err
	}

	environment.Set("classpath", strings.Join(c.Classpath(spec, set), c.platform.PathListSeparator()))
	environment.Set("natives_directory", nativesDir)

	return environment.ResolveAll(templates), nil
}

// ExtractNatives unpacks every native bundle of set into a fresh temporary
// directory. The caller removes the directory when the attempt ends.
func (c *Composer) ExtractNatives(ctx context.Context, set install.LibrarySet) (string, error) {
	dir, err := os.MkdirTemp("", "minelaunch-natives-*")
	if err != nil {
		return "", fmt.Errorf("%w: create natives directory: %v", download.ErrIO, err)
	}

	for _, native := range set.Natives {
		if err := extractJar(ctx, c.layout.LibraryPath(native.Path), dir); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("extract native %s: %w", native.Name, err)
		}
		slog.Debug("extracted native", "library", native.Name)
	}

	return dir, nil
}

func extractJar(ctx context.Context, path, dest string) error {
	f, err := os.Open(path) //nolint:gosec // G304: path is below the libraries root
	if err != nil {
		return fmt.Errorf("%w: %v", download.ErrIO, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := extract.Archive(ctx, f, dest, nil); err != nil {
		return fmt.Errorf("%w: %v", download.ErrIO, err)
	}
	return nil
}
