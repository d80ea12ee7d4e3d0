package install

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// Assets fetches the spec's asset index and every object it lists, then
// replicates objects into the legacy virtual and resources layouts when the
// index asks for them.
func (m *Materializer) Assets(ctx context.Context, spec *minecraft.VersionSpec) error {
	index, err := m.assetIndex(ctx, spec)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		if err := state.ValidateRelPath(name); err != nil {
			return fmt.Errorf("%w: asset index %s: %v", minecraft.ErrParse, spec.AssetsID(), err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Objects shared by several names are fetched once
	seen := make(map[string]bool, len(names))
	items := make([]download.Item, 0, len(names))
	for _, name := range names {
		obj := index.Objects[name]
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true

		items = append(items, download.Item{
			Dest:   m.layout.ObjectPath(obj.RelPath()),
			URL:    strings.TrimRight(m.resourcesURL, "/") + "/" + obj.RelPath(),
			Label:  name,
			Expect: &minecraft.Download{SHA1: obj.Hash, Size: obj.Size},
		})
	}

	missing := m.fetcher.Missing(items)
	slog.Info("checked assets",
		"index", spec.AssetsID(),
		"objects", len(items),
		"to_fetch", len(missing))

	if _, err := m.fetcher.FetchAll(ctx, missing); err != nil {
		return fmt.Errorf("fetch assets: %w", err)
	}

	if index.Virtual {
		if err := m.replicate(index, names, m.layout.VirtualDir(spec.AssetsID())); err != nil {
			return fmt.Errorf("replicate virtual assets: %w", err)
		}
	}

	if index.MapToResources {
		if err := m.replicate(index, names, m.layout.ResourcesDir()); err != nil {
			return fmt.Errorf("replicate resources: %w", err)
		}
	}

	return nil
}

func (m *Materializer) assetIndex(ctx context.Context, spec *minecraft.VersionSpec) (*minecraft.AssetIndex, error) {
	id := spec.AssetsID()
	if err := state.ValidateVersion(id); err != nil {
		return nil, fmt.Errorf("%w: asset index id: %v", minecraft.ErrParse, err)
	}

	path := m.layout.IndexPath(id)
	ref := spec.AssetIndex.Download()

	if !download.VerifyDownload(path, ref) {
		slog.Info("fetching asset index", "index", id)
		if err := m.fetcher.Fetch(ctx, download.Item{
			Dest:   path,
			URL:    ref.URL,
			Label:  id + ".json",
			Expect: &ref,
		}); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read asset index: %v", download.ErrIO, err)
	}

	return minecraft.ParseAssetIndex(data)
}

// replicate copies each named object below root, skipping targets that
// already verify. Objects stay in the store.
func (m *Materializer) replicate(index *minecraft.AssetIndex, names []string, root string) error {
	copied := 0
	for _, name := range names {
		obj := index.Objects[name]
		target := filepath.Join(root, filepath.FromSlash(name))

		if download.Verify(target, obj.Hash, obj.Size) {
			continue
		}

		if err := state.CopyFile(m.layout.ObjectPath(obj.RelPath()), target); err != nil {
			return fmt.Errorf("%w: %s: %v", download.ErrIO, name, err)
		}
		copied++
	}

	slog.Debug("replicated assets", "root", root, "copied", copied, "objects", len(names))
	return nil
}
