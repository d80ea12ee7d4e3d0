// Package install materializes a version into an install root: its spec
// document, client jar, libraries, native bundles and assets.
package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// Resolver turns a manifest entry into a parsed spec backed by a client jar
// on disk.
type Resolver struct {
	layout  state.Layout
	fetcher *download.Fetcher
}

// NewResolver creates a resolver for layout.
func NewResolver(layout state.Layout, fetcher *download.Fetcher) *Resolver {
	return &Resolver{layout: layout, fetcher: fetcher}
}

// Resolve returns the spec of v, downloading it and the client jar when the
// version is not cached yet. A cached spec is trusted as present; only its
// client jar is verified and refetched when stale.
func (r *Resolver) Resolve(ctx context.Context, v minecraft.VersionInfo) (*minecraft.VersionSpec, error) {
	if err := state.ValidateVersion(v.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", minecraft.ErrParse, err)
	}

	specPath := r.layout.SpecPath(v.ID)
	jarPath := r.layout.ClientJarPath(v.ID)

	_, err := os.Stat(specPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return r.install(ctx, v, specPath, jarPath)
	case err != nil:
		return nil, fmt.Errorf("%w: stat spec: %v", download.ErrIO, err)
	}

	spec, err := readSpec(specPath)
	if err != nil {
		return nil, err
	}

	client := spec.Downloads.Client
	if download.VerifyDownload(jarPath, client) {
		slog.Debug("version cached", "version", v.ID)
		return spec, nil
	}

	slog.Info("client jar missing or damaged, refetching", "version", v.ID)
	if err := r.fetcher.Fetch(ctx, download.Item{
		Dest:   jarPath,
		URL:    client.URL,
		Label:  v.ID + ".jar",
		Expect: &client,
	}); err != nil {
		return nil, err
	}

	return spec, nil
}

func (r *Resolver) install(ctx context.Context, v minecraft.VersionInfo, specPath, jarPath string) (*minecraft.VersionSpec, error) {
	slog.Info("downloading version", "version", v.ID)

	if err := r.fetcher.Fetch(ctx, download.Item{
		Dest:  specPath,
		URL:   v.URL,
		Label: v.ID + ".json",
	}); err != nil {
		return nil, err
	}

	spec, err := readSpec(specPath)
	if err != nil {
		// A spec that does not parse would be trusted forever once cached
		_ = os.Remove(specPath)
		return nil, err
	}

	// Freshly downloaded, so trusted as received
	if err := r.fetcher.Fetch(ctx, download.Item{
		Dest:  jarPath,
		URL:   spec.Downloads.Client.URL,
		Label: v.ID + ".jar",
	}); err != nil {
		return nil, err
	}

	return spec, nil
}

func readSpec(path string) (*minecraft.VersionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read spec: %v", download.ErrIO, err)
	}
	return minecraft.ParseVersionSpec(data)
}
