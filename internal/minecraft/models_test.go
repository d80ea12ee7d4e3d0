package minecraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheDevelo/minelaunch/internal/platform"
)

const legacySpec = `{
	"id": "1.12.2",
	"type": "release",
	"mainClass": "net.minecraft.client.main.Main",
	"assets": "1.12",
	"assetIndex": {"id": "1.12", "sha1": "abc", "size": 10, "totalSize": 100, "url": "https://example.com/1.12.json"},
	"downloads": {"client": {"sha1": "def", "size": 20, "url": "https://example.com/client.jar"}},
	"minecraftArguments": "--username ${auth_player_name} --version ${version_name}",
	"minimumLauncherVersion": 18,
	"libraries": [
		{
			"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4-nightly-20150209",
			"downloads": {
				"classifiers": {
					"natives-linux": {"path": "lwjgl-platform-natives-linux.jar", "sha1": "1", "size": 1, "url": "https://example.com/l.jar"},
					"natives-windows-64": {"path": "lwjgl-platform-natives-windows-64.jar", "sha1": "2", "size": 2, "url": "https://example.com/w64.jar"},
					"natives-windows-32": {"path": "lwjgl-platform-natives-windows-32.jar", "sha1": "3", "size": 3, "url": "https://example.com/w32.jar"}
				}
			},
			"natives": {"linux": "natives-linux", "windows": "natives-windows-${arch}"},
			"extract": {"exclude": ["META-INF/"]}
		}
	]
}`

func TestParseVersionSpec(t *testing.T) {
	spec, err := ParseVersionSpec([]byte(legacySpec))
	require.NoError(t, err)

	assert.Equal(t, "1.12.2", spec.ID)
	assert.Equal(t, "1.12", spec.AssetsID())
	assert.Equal(t, DefaultJavaMajor, spec.JavaMajor())
	assert.Nil(t, spec.Arguments)
	require.NotNil(t, spec.MinecraftArguments)
	assert.Equal(t, "https://example.com/client.jar", spec.Downloads.Client.URL)
	assert.Nil(t, spec.Downloads.Server)
	require.Len(t, spec.Libraries, 1)
	assert.Equal(t, []string{"META-INF/"}, spec.Libraries[0].Extract.Exclude)
}

func TestParseVersionSpec_Malformed(t *testing.T) {
	_, err := ParseVersionSpec([]byte(`{"id": 5}`))
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseVersionSpec([]byte(`not json`))
	assert.ErrorIs(t, err, ErrParse)
}

func TestVersionSpec_JavaMajor(t *testing.T) {
	spec := &VersionSpec{JavaVersion: &JavaVersion{Component: "java-runtime-alpha", MajorVersion: 16}}
	assert.Equal(t, 16, spec.JavaMajor())

	spec.JavaVersion.MajorVersion = 0
	assert.Equal(t, DefaultJavaMajor, spec.JavaMajor())
}

func TestVersionSpec_AssetsIDFallback(t *testing.T) {
	spec := &VersionSpec{AssetIndex: AssetIndexRef{ID: "pre-1.6"}}
	assert.Equal(t, "pre-1.6", spec.AssetsID())
}

func TestLibrary_NativeFor(t *testing.T) {
	spec, err := ParseVersionSpec([]byte(legacySpec))
	require.NoError(t, err)
	lib := spec.Libraries[0]

	tests := []struct {
		name       string
		platform   platform.Platform
		classifier string
		url        string
		found      bool
	}{
		{name: "linux", platform: platform.Platform{OS: platform.Linux, Arch: platform.X64}, classifier: "natives-linux", url: "https://example.com/l.jar", found: true},
		{name: "windows 64", platform: platform.Platform{OS: platform.Windows, Arch: platform.X64}, classifier: "natives-windows-64", url: "https://example.com/w64.jar", found: true},
		{name: "windows 32", platform: platform.Platform{OS: platform.Windows, Arch: platform.X86}, classifier: "natives-windows-32", url: "https://example.com/w32.jar", found: true},
		{name: "no osx entry", platform: platform.Platform{OS: platform.MacOS, Arch: platform.ARM64}, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, classifier, ok := lib.NativeFor(tt.platform)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.classifier, classifier)
				assert.Equal(t, tt.url, d.URL)
			}
		})
	}
}

func TestLibrary_ArtifactPath(t *testing.T) {
	withPath := Library{
		Name:      "com.mojang:patchy:1.3.9",
		Downloads: LibraryDownloads{Artifact: &Download{Path: "com/mojang/patchy/1.3.9/patchy-1.3.9.jar"}},
	}
	p, err := withPath.ArtifactPath()
	require.NoError(t, err)
	assert.Equal(t, "com/mojang/patchy/1.3.9/patchy-1.3.9.jar", p)

	noPath := Library{Name: "net.sf.jopt-simple:jopt-simple:5.0.3", Downloads: LibraryDownloads{Artifact: &Download{}}}
	p, err = noPath.ArtifactPath()
	require.NoError(t, err)
	assert.Equal(t, "net/sf/jopt-simple/jopt-simple/5.0.3/jopt-simple-5.0.3.jar", p)
}

func TestParseAssetIndex(t *testing.T) {
	index, err := ParseAssetIndex([]byte(`{
		"virtual": true,
		"objects": {
			"sounds/step/grass1.ogg": {"hash": "bd2ac9bc2bc9bf5c8cfa0a4ae8fcfa1e6b3d8aa4", "size": 8136}
		}
	}`))
	require.NoError(t, err)

	assert.True(t, index.Virtual)
	assert.False(t, index.MapToResources)
	obj := index.Objects["sounds/step/grass1.ogg"]
	assert.Equal(t, "bd/bd2ac9bc2bc9bf5c8cfa0a4ae8fcfa1e6b3d8aa4", obj.RelPath())
}

func TestParseAssetIndex_Malformed(t *testing.T) {
	_, err := ParseAssetIndex([]byte(`{"objects": {"a": {"hash": "b", "size": 1}}}`))
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseAssetIndex([]byte(`{"objects": []}`))
	assert.ErrorIs(t, err, ErrParse)
}
