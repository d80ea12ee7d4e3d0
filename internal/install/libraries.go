package install

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// DefaultResourcesURL serves asset objects by content address.
const DefaultResourcesURL = state.DefaultResourcesURL

// LibraryFile is one library jar selected for a platform.
type LibraryFile struct {
	// Name is the library's maven coordinate.
	Name string
	// Path is relative to the libraries root, slash-separated.
	Path     string
	Download minecraft.Download
}

// LibrarySet is the platform's view of a spec's libraries, in spec order.
type LibrarySet struct {
	// Artifacts go on the classpath.
	Artifacts []LibraryFile
	// Natives are extracted before launch.
	Natives []LibraryFile
}

// SelectLibraries applies each library's rules for p and collects the
// general artifacts and p's native classifiers.
func SelectLibraries(spec *minecraft.VersionSpec, p platform.Platform) (LibrarySet, error) {
	var set LibrarySet

	for i := range spec.Libraries {
		lib := &spec.Libraries[i]
		if !minecraft.RulesSatisfied(lib.Rules, p, nil) {
			slog.Debug("library excluded by rules", "library", lib.Name)
			continue
		}

		if lib.Downloads.Artifact != nil {
			rel, err := lib.ArtifactPath()
			if err != nil {
				return LibrarySet{}, fmt.Errorf("%w: library %s: %v", minecraft.ErrParse, lib.Name, err)
			}
			if err := state.ValidateRelPath(rel); err != nil {
				return LibrarySet{}, fmt.Errorf("%w: library %s: %v", minecraft.ErrParse, lib.Name, err)
			}
			set.Artifacts = append(set.Artifacts, LibraryFile{Name: lib.Name, Path: rel, Download: *lib.Downloads.Artifact})
		}

		if lib.Natives == nil {
			continue
		}

		native, classifier, ok := lib.NativeFor(p)
		if !ok {
			if classifier != "" {
				slog.Warn("library declares a native classifier it does not provide",
					"library", lib.Name,
					"classifier", classifier)
			}
			continue
		}

		rel := native.Path
		if rel == "" {
			var err error
			if rel, err = minecraft.MavenPath(lib.Name + ":" + classifier); err != nil {
				return LibrarySet{}, fmt.Errorf("%w: library %s: %v", minecraft.ErrParse, lib.Name, err)
			}
		}
		if err := state.ValidateRelPath(rel); err != nil {
			return LibrarySet{}, fmt.Errorf("%w: library %s: %v", minecraft.ErrParse, lib.Name, err)
		}
		set.Natives = append(set.Natives, LibraryFile{Name: lib.Name + ":" + classifier, Path: rel, Download: native})
	}

	return set, nil
}

// Materializer brings a spec's libraries and assets up to date on disk.
type Materializer struct {
	layout       state.Layout
	fetcher      *download.Fetcher
	platform     platform.Platform
	resourcesURL string
}

// MaterializerConfig holds materializer configuration.
type MaterializerConfig struct {
	Layout   state.Layout
	Fetcher  *download.Fetcher
	Platform platform.Platform
	// ResourcesURL is the base asset objects are fetched from.
	ResourcesURL string
}

// NewMaterializer creates a materializer.
func NewMaterializer(config MaterializerConfig) *Materializer {
	if config.ResourcesURL == "" {
		config.ResourcesURL = DefaultResourcesURL
	}
	if config.Fetcher == nil {
		config.Fetcher = download.NewFetcher(nil)
	}

	return &Materializer{
		layout:       config.Layout,
		fetcher:      config.Fetcher,
		platform:     config.Platform,
		resourcesURL: config.ResourcesURL,
	}
}

// Libraries fetches every selected artifact and native classifier that is
// missing or fails verification, in one batch.
func (m *Materializer) Libraries(ctx context.Context, spec *minecraft.VersionSpec) error {
	set, err := SelectLibraries(spec, m.platform)
	if err != nil {
		return err
	}

	files := append(append([]LibraryFile{}, set.Artifacts...), set.Natives...)
	items := make([]download.Item, 0, len(files))
	for _, f := range files {
		d := f.Download
		items = append(items, download.Item{
			Dest:   m.layout.LibraryPath(f.Path),
			URL:    d.URL,
			Label:  f.Name,
			Expect: &d,
		})
	}

	missing := m.fetcher.Missing(items)
	slog.Info("checked libraries",
		"version", spec.ID,
		"libraries", len(items),
		"to_fetch", len(missing))

	if _, err := m.fetcher.FetchAll(ctx, missing); err != nil {
		return fmt.Errorf("fetch libraries: %w", err)
	}

	return nil
}
