package minecraft

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TheDevelo/minelaunch/internal/platform"
)

// DefaultJavaMajor is assumed when a version spec has no javaVersion.
const DefaultJavaMajor = 8

// VersionSpec is the per-version document describing downloads, libraries
// and launch arguments.
type VersionSpec struct {
	ID                     string           `json:"id"`
	Type                   string           `json:"type"`
	MainClass              string           `json:"mainClass"`
	Assets                 string           `json:"assets"`
	AssetIndex             AssetIndexRef    `json:"assetIndex"`
	Downloads              VersionDownloads `json:"downloads"`
	Libraries              []Library        `json:"libraries"`
	JavaVersion            *JavaVersion     `json:"javaVersion,omitempty"`
	Arguments              *Arguments       `json:"arguments,omitempty"`
	MinecraftArguments     *string          `json:"minecraftArguments,omitempty"`
	MinimumLauncherVersion int              `json:"minimumLauncherVersion"`
}

// Download describes one content-addressed file: where it goes, what it
// hashes to and where to get it.
type Download struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// VersionDownloads lists the build's own artifacts. Server is absent before
// 1.2.5 and the mappings before 1.14.4.
type VersionDownloads struct {
	Client         Download  `json:"client"`
	Server         *Download `json:"server,omitempty"`
	ClientMappings *Download `json:"client_mappings,omitempty"`
	ServerMappings *Download `json:"server_mappings,omitempty"`
}

// AssetIndexRef is the descriptor of a version's asset index document.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// Download returns the index as a plain content descriptor.
func (a AssetIndexRef) Download() Download {
	return Download{SHA1: a.SHA1, Size: a.Size, URL: a.URL}
}

// JavaVersion names the runtime a version needs.
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// AssetsID names the asset index, falling back to the index's own id.
func (s *VersionSpec) AssetsID() string {
	if s.Assets != "" {
		return s.Assets
	}
	return s.AssetIndex.ID
}

// JavaMajor returns the required runtime major version, 8 when unspecified.
func (s *VersionSpec) JavaMajor() int {
	if s.JavaVersion == nil || s.JavaVersion.MajorVersion == 0 {
		return DefaultJavaMajor
	}
	return s.JavaVersion.MajorVersion
}

// Library is one entry of a spec's libraries list.
type Library struct {
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads"`
	Natives   *Natives         `json:"natives,omitempty"`
	Extract   *ExtractOptions  `json:"extract,omitempty"`
	Rules     []Rule           `json:"rules,omitempty"`
}

// LibraryDownloads holds the general artifact and the named classifiers.
// Some old libraries have no artifact at all.
type LibraryDownloads struct {
	Artifact    *Download           `json:"artifact,omitempty"`
	Classifiers map[string]Download `json:"classifiers,omitempty"`
}

// Natives maps each OS to the classifier holding its native bundle.
type Natives struct {
	Linux   string `json:"linux,omitempty"`
	OSX     string `json:"osx,omitempty"`
	Windows string `json:"windows,omitempty"`
}

// ExtractOptions is carried for completeness; native bundles are extracted
// whole.
type ExtractOptions struct {
	Exclude []string `json:"exclude"`
}

// ArtifactPath returns the artifact's path relative to the libraries root,
// falling back to the maven layout of the library name.
func (l *Library) ArtifactPath() (string, error) {
	if l.Downloads.Artifact != nil && l.Downloads.Artifact.Path != "" {
		return l.Downloads.Artifact.Path, nil
	}
	return MavenPath(l.Name)
}

// NativeFor returns the native classifier download for p, if the library
// declares one for p's OS.
func (l *Library) NativeFor(p platform.Platform) (Download, string, bool) {
	if l.Natives == nil {
		return Download{}, "", false
	}

	var classifier string
	switch p.OS {
	case platform.Windows:
		classifier = l.Natives.Windows
	case platform.MacOS:
		classifier = l.Natives.OSX
	case platform.Linux:
		classifier = l.Natives.Linux
	}
	if classifier == "" {
		return Download{}, "", false
	}

	classifier = strings.ReplaceAll(classifier, "${arch}", p.Bitness())
	d, ok := l.Downloads.Classifiers[classifier]
	return d, classifier, ok
}

// AssetIndex is the document listing every asset object of a version.
type AssetIndex struct {
	Objects        map[string]AssetObject `json:"objects"`
	Virtual        bool                   `json:"virtual,omitempty"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
}

// AssetObject is one content-addressed asset.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// RelPath is the object's content-addressed path below assets/objects.
func (o AssetObject) RelPath() string {
	return o.Hash[:2] + "/" + o.Hash
}

// ParseVersionSpec decodes a version spec document.
func ParseVersionSpec(data []byte) (*VersionSpec, error) {
	var spec VersionSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: version spec: %v", ErrParse, err)
	}
	return &spec, nil
}

// ParseAssetIndex decodes an asset index document and rejects objects whose
// hash cannot name a storage path.
func ParseAssetIndex(data []byte) (*AssetIndex, error) {
	var index AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: asset index: %v", ErrParse, err)
	}

	for name, obj := range index.Objects {
		if len(obj.Hash) < 2 {
			return nil, fmt.Errorf("%w: asset index: object %q has hash %q", ErrParse, name, obj.Hash)
		}
	}

	return &index, nil
}
