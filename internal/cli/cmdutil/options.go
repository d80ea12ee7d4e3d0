// Package cmdutil holds the state shared by every command: global flags,
// the effective configuration and constructors for the engine components.
package cmdutil

import (
	"fmt"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/identity"
	"github.com/TheDevelo/minelaunch/internal/jre"
	"github.com/TheDevelo/minelaunch/internal/launch"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// Options carries the global flags and the configuration loaded by the root
// command before any subcommand runs.
type Options struct {
	// Global flags
	ConfigFile string
	JSON       bool
	Quiet      bool
	Verbose    bool
	Dir        string
	Username   string

	// Config is the effective configuration: file, then MINELAUNCH_*
	// environment, then flags.
	Config *state.Config

	// ConfigPath is the file Config was read from.
	ConfigPath string

	// Platform overrides host detection when set.
	Platform *platform.Platform
}

// config returns the loaded configuration, or the defaults when the root
// command has not loaded one.
func (o *Options) config() *state.Config {
	if o.Config == nil {
		o.Config = state.DefaultConfig()
	}
	return o.Config
}

// HostPlatform returns the platform the engine targets.
func (o *Options) HostPlatform() (platform.Platform, error) {
	if o.Platform != nil {
		return *o.Platform, nil
	}
	return platform.Detect()
}

// Layout returns the configured install root.
func (o *Options) Layout() (state.Layout, error) {
	dir, err := o.config().InstallDir()
	if err != nil {
		return state.Layout{}, fmt.Errorf("resolve install directory: %w", err)
	}
	return state.NewLayout(dir)
}

// Fetcher returns a fetcher honoring the configured concurrency.
func (o *Options) Fetcher() *download.Fetcher {
	return download.NewFetcher(&download.Config{
		Concurrency: o.config().Install.Concurrency,
		UserAgent:   minecraft.UserAgent,
	})
}

// ManifestClient returns a client for the configured manifest URL.
func (o *Options) ManifestClient() *minecraft.Client {
	return minecraft.NewClient(&minecraft.Config{ManifestURL: o.config().Install.ManifestURL})
}

// Provisioner returns the runtime provisioner of layout.
func (o *Options) Provisioner(layout state.Layout, fetcher *download.Fetcher, p platform.Platform) *jre.Provisioner {
	return jre.NewProvisioner(jre.Config{
		Layout:   layout,
		Fetcher:  fetcher,
		Platform: p,
		BaseURL:  o.config().Install.RuntimeURL,
	})
}

// IdentityClient returns the profile API client.
func (o *Options) IdentityClient() *identity.Client {
	return identity.NewClient(nil)
}

// Launcher wires a launcher from the configuration. memory overrides the
// configured heap size when non-empty.
func (o *Options) Launcher(memory string) (*launch.Launcher, state.Layout, error) {
	p, err := o.HostPlatform()
	if err != nil {
		return nil, state.Layout{}, err
	}

	layout, err := o.Layout()
	if err != nil {
		return nil, state.Layout{}, err
	}

	if memory == "" {
		memory = o.config().Profile.Memory
	}

	fetcher := o.Fetcher()
	l, err := launch.NewLauncher(launch.Config{
		Layout:       layout,
		Platform:     p,
		Manifest:     o.ManifestClient(),
		Runtimes:     o.Provisioner(layout, fetcher, p),
		Fetcher:      fetcher,
		ResourcesURL: o.config().Install.ResourcesURL,
		Memory:       memory,
	})
	if err != nil {
		return nil, state.Layout{}, err
	}

	return l, layout, nil
}
