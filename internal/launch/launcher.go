package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/env"
	"github.com/TheDevelo/minelaunch/internal/install"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// ManifestSource fetches the version manifest.
type ManifestSource interface {
	GetVersionManifest(ctx context.Context) (*minecraft.VersionManifest, error)
}

// RuntimeProvider installs Java runtimes by major version.
type RuntimeProvider interface {
	Ensure(ctx context.Context, major int) (string, error)
	JavaPath(major int) string
}

// Launcher installs and launches versions into one install root.
type Launcher struct {
	layout       state.Layout
	platform     platform.Platform
	manifest     ManifestSource
	runtimes     RuntimeProvider
	resolver     *install.Resolver
	materializer *install.Materializer
	composer     *Composer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Config holds launcher configuration.
type Config struct {
	Layout   state.Layout
	Platform platform.Platform
	Manifest ManifestSource
	Runtimes RuntimeProvider
	Fetcher  *download.Fetcher

	// ResourcesURL overrides the asset object origin.
	ResourcesURL string
	// Memory is the heap size passed as -Xmx; empty leaves the default.
	Memory string

	// Standard streams of the game; nil means the launcher's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher creates a launcher.
func NewLauncher(config Config) (*Launcher, error) {
	if config.Manifest == nil {
		return nil, fmt.Errorf("launcher requires a manifest source")
	}
	if config.Runtimes == nil {
		return nil, fmt.Errorf("launcher requires a runtime provider")
	}
	if config.Fetcher == nil {
		config.Fetcher = download.NewFetcher(nil)
	}
	if config.Stdin == nil {
		config.Stdin = os.Stdin
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}

	composer, err := NewComposer(config.Layout, config.Platform, config.Memory)
	if err != nil {
		return nil, err
	}

	return &Launcher{
		layout:   config.Layout,
		platform: config.Platform,
		manifest: config.Manifest,
		runtimes: config.Runtimes,
		resolver: install.NewResolver(config.Layout, config.Fetcher),
		materializer: install.NewMaterializer(install.MaterializerConfig{
			Layout:       config.Layout,
			Fetcher:      config.Fetcher,
			Platform:     config.Platform,
			ResourcesURL: config.ResourcesURL,
		}),
		composer: composer,
		stdin:    config.Stdin,
		stdout:   config.Stdout,
		stderr:   config.Stderr,
	}, nil
}

// Install materializes versionID: spec, client jar, runtime, libraries and
// assets. It holds the install lock for its duration.
func (l *Launcher) Install(ctx context.Context, versionID string) error {
	unlock, err := l.lock()
	if err != nil {
		return err
	}
	defer unlock()

	_, err = l.install(ctx, versionID)
	return err
}

// Launch installs versionID if needed and runs it with environment, which
// supplies caller keys such as auth_player_name. environment is cloned and
// left untouched. The install lock is released once the command line is
// composed. The returned code is the game's exit status.
func (l *Launcher) Launch(ctx context.Context, versionID string, environment *env.Environment) (int, error) {
	unlock, err := l.lock()
	if err != nil {
		return -1, err
	}
	defer unlock()

	if environment == nil {
		environment = env.New()
	}
	attemptEnv := environment.Clone()

	spec, err := l.install(ctx, versionID)
	if err != nil {
		return -1, err
	}

	l.seed(attemptEnv, spec)

	set, err := install.SelectLibraries(spec, l.platform)
	if err != nil {
		return -1, err
	}

	nativesDir, err := l.composer.ExtractNatives(ctx, set)
	if err != nil {
		return -1, err
	}
	defer func() {
		if err := os.RemoveAll(nativesDir); err != nil {
			slog.Warn("failed to remove natives directory", "path", nativesDir, "error", err)
		}
	}()

	args, err := l.composer.Compose(spec, set, nativesDir, attemptEnv)
	if err != nil {
		return -1, err
	}

	unlock()

	slog.Info("launching", "version", spec.ID, "java_major", spec.JavaMajor())

	proc := &Process{
		Java:   l.runtimes.JavaPath(spec.JavaMajor()),
		Args:   args,
		Dir:    l.layout.Root,
		Stdin:  l.stdin,
		Stdout: l.stdout,
		Stderr: l.stderr,
	}
	code, err := proc.Run()
	if err != nil {
		return -1, err
	}

	slog.Info("game exited", "version", spec.ID, "exit_code", code)
	return code, nil
}

// install resolves versionID and provisions its runtime while libraries
// and then assets are materialized.
func (l *Launcher) install(ctx context.Context, versionID string) (*minecraft.VersionSpec, error) {
	manifest, err := l.manifest.GetVersionManifest(ctx)
	if err != nil {
		return nil, err
	}

	info, err := manifest.Find(versionID)
	if err != nil {
		return nil, err
	}

	spec, err := l.resolver.Resolve(ctx, info)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := l.runtimes.Ensure(gctx, spec.JavaMajor())
		return err
	})
	g.Go(func() error {
		if err := l.materializer.Libraries(gctx, spec); err != nil {
			return err
		}
		return l.materializer.Assets(gctx, spec)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("version installed", "version", spec.ID)
	return spec, nil
}

// seed binds the per-version facts templates refer to.
func (l *Launcher) seed(environment *env.Environment, spec *minecraft.VersionSpec) {
	environment.Set("version_name", spec.ID)
	environment.Set("version_type", spec.Type)
	environment.Set("game_directory", l.layout.Root)
	environment.Set("assets_root", l.layout.AssetsDir())
	environment.Set("assets_index_name", spec.AssetsID())
	environment.Set("game_assets", l.layout.VirtualDir(spec.AssetsID()))
	environment.Set("library_directory", l.layout.LibrariesDir())
	environment.Set("classpath_separator", l.platform.PathListSeparator())
}

func (l *Launcher) lock() (func(), error) {
	if err := l.layout.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", download.ErrIO, err)
	}

	fl, err := state.TryLockFile(l.layout.LockPath())
	if errors.Is(err, state.ErrLockHeld) {
		slog.Info("waiting for another launcher using this install", "lock", l.layout.LockPath())
		fl, err = state.LockFile(l.layout.LockPath())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: install lock: %v", download.ErrIO, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := fl.Unlock(); err != nil {
				slog.Warn("failed to release install lock", "path", fl.Path(), "error", err)
			}
		})
	}, nil
}
