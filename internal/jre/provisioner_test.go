package jre

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

type archiveFile struct {
	mode os.FileMode
	body string
}

func tarGz(t *testing.T, files map[string]archiveFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, name := range sortedNames(files) {
		f := files[name]
		mode := f.mode
		if mode == 0 {
			mode = 0o644
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     int64(mode),
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zipArchive(t *testing.T, files map[string]archiveFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedNames(files) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name].body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sortedNames(files map[string]archiveFile) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runtimeServer serves one archive body for every request and records the
// requested paths.
type runtimeServer struct {
	*httptest.Server

	mu    sync.Mutex
	body  []byte
	paths []string
}

func newRuntimeServer(t *testing.T, body []byte) *runtimeServer {
	t.Helper()
	rs := &runtimeServer{body: body}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.mu.Unlock()
		_, _ = w.Write(rs.body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *runtimeServer) requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.paths...)
}

func newProvisioner(t *testing.T, p platform.Platform, baseURL string) (*Provisioner, state.Layout) {
	t.Helper()
	layout, err := state.NewLayout(t.TempDir())
	require.NoError(t, err)

	return NewProvisioner(Config{
		Layout:   layout,
		Fetcher:  download.NewFetcher(&download.Config{Concurrency: 2}),
		Platform: p,
		BaseURL:  baseURL,
	}), layout
}

// assertNoScratch checks that only runtime directories remain.
func assertNoScratch(t *testing.T, layout state.Layout) {
	t.Helper()
	entries, err := os.ReadDir(layout.RuntimeRoot())
	require.NoError(t, err)
	for _, e := range entries {
		assert.Regexp(t, `^java\d+-`, e.Name())
	}
}

func TestProvisioner_Naming(t *testing.T) {
	tests := []struct {
		name     string
		platform platform.Platform
		major    int
		dirName  string
		java     string
		url      string
	}{
		{
			name:     "linux jre",
			platform: platform.Platform{OS: platform.Linux, Arch: platform.X64},
			major:    8,
			dirName:  "java8-linux-x64",
			java:     "java",
			url:      "http://api.test/8/ga/linux/x64/jre/hotspot/normal/eclipse",
		},
		{
			name:     "mac arm jdk",
			platform: platform.Platform{OS: platform.MacOS, Arch: platform.ARM64},
			major:    17,
			dirName:  "java17-macos-arm64",
			java:     "java",
			url:      "http://api.test/17/ga/mac/aarch64/jdk/hotspot/normal/eclipse",
		},
		{
			name:     "windows x86 at the jlink boundary",
			platform: platform.Platform{OS: platform.Windows, Arch: platform.X86},
			major:    16,
			dirName:  "java16-windows-x86",
			java:     "java.exe",
			url:      "http://api.test/16/ga/windows/x32/jdk/hotspot/normal/eclipse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, layout := newProvisioner(t, tt.platform, "http://api.test")

			assert.Equal(t, tt.dirName, p.Name(tt.major))
			assert.Equal(t, filepath.Join(layout.RuntimeRoot(), tt.dirName), p.Dir(tt.major))
			assert.Equal(t, filepath.Join(layout.RuntimeRoot(), tt.dirName, "bin", tt.java), p.JavaPath(tt.major))
			assert.Equal(t, tt.url, p.DownloadURL(tt.major))
		})
	}
}

func TestNewProvisioner_DefaultBaseURL(t *testing.T) {
	p := NewProvisioner(Config{Platform: platform.Platform{OS: platform.Linux, Arch: platform.X64}})
	assert.Equal(t, DefaultBaseURL+"/8/ga/linux/x64/jre/hotspot/normal/eclipse", p.DownloadURL(8))
}

func TestProvisioner_Ensure_Linux(t *testing.T) {
	archive := tarGz(t, map[string]archiveFile{
		"jdk8u292-b10-jre/bin/java":   {mode: 0o755, body: "#!/bin/sh\n"},
		"jdk8u292-b10-jre/lib/rt.jar": {body: "rt"},
		"jdk8u292-b10-jre/release":    {body: "JAVA_VERSION=\"1.8.0_292\"\n"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)

	dir, err := p.Ensure(context.Background(), 8)
	require.NoError(t, err)

	assert.Equal(t, p.Dir(8), dir)
	assert.FileExists(t, p.JavaPath(8))
	assert.FileExists(t, filepath.Join(dir, "lib", "rt.jar"))
	assert.Equal(t, []string{"/8/ga/linux/x64/jre/hotspot/normal/eclipse"}, rs.requests())
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_ExistingDirIsDone(t *testing.T) {
	rs := newRuntimeServer(t, nil)
	p, _ := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)
	require.NoError(t, os.MkdirAll(p.Dir(8), 0o755))

	dir, err := p.Ensure(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, p.Dir(8), dir)
	assert.Empty(t, rs.requests())
}

func TestProvisioner_Ensure_MacOS(t *testing.T) {
	archive := tarGz(t, map[string]archiveFile{
		"jdk8u292-b10-jre/Contents/Home/bin/java":      {mode: 0o755, body: "#!/bin/sh\n"},
		"jdk8u292-b10-jre/Contents/Home/release":       {body: "JAVA_VERSION=\"1.8.0_292\"\n"},
		"jdk8u292-b10-jre/Contents/MacOS/libjli.dylib": {body: "jli"},
		"jdk8u292-b10-jre/Contents/Info.plist":         {body: "<plist/>"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.MacOS, Arch: platform.X64}, rs.URL)

	dir, err := p.Ensure(context.Background(), 8)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "bin", "java"))
	assert.FileExists(t, filepath.Join(dir, "bin", "libjli.dylib"))
	assert.FileExists(t, filepath.Join(dir, "release"))
	assert.NoFileExists(t, filepath.Join(dir, "Info.plist"))
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_Windows(t *testing.T) {
	archive := zipArchive(t, map[string]archiveFile{
		"jdk8u292-b10-jre/bin/java.exe": {body: "MZ"},
		"jdk8u292-b10-jre/lib/rt.jar":   {body: "rt"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Windows, Arch: platform.X64}, rs.URL)

	dir, err := p.Ensure(context.Background(), 8)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "bin", "java.exe"))
	assert.FileExists(t, filepath.Join(dir, "lib", "rt.jar"))
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_MultipleTopLevelDirs(t *testing.T) {
	archive := tarGz(t, map[string]archiveFile{
		"a/bin/java": {body: "a"},
		"b/bin/java": {body: "b"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)

	_, err := p.Ensure(context.Background(), 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtract)
	assert.NoDirExists(t, p.Dir(8))
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_NotAnArchive(t *testing.T) {
	rs := newRuntimeServer(t, []byte("this is not an archive"))
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)

	_, err := p.Ensure(context.Background(), 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtract)
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, server.URL)

	_, err := p.Ensure(context.Background(), 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, download.ErrTransport)
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_Jlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake jlink is a shell script")
	}

	// The fake jlink builds the image at the path following --output.
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; fi
  shift
done
mkdir -p "$out/bin"
printf '#!/bin/sh\n' > "$out/bin/java"
printf 'JAVA_VERSION="17.0.2"\n' > "$out/release"
`
	archive := tarGz(t, map[string]archiveFile{
		"jdk-17.0.2+8/bin/jlink": {mode: 0o755, body: script},
		"jdk-17.0.2+8/release":   {body: "JAVA_VERSION=\"17.0.2\"\n"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)

	dir, err := p.Ensure(context.Background(), 17)
	require.NoError(t, err)

	assert.FileExists(t, p.JavaPath(17))
	assert.Equal(t, []string{"/17/ga/linux/x64/jdk/hotspot/normal/eclipse"}, rs.requests())

	v, err := InstalledVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 17, FeatureRelease(v))
	assertNoScratch(t, layout)
}

func TestProvisioner_Ensure_JlinkFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake jlink is a shell script")
	}

	archive := tarGz(t, map[string]archiveFile{
		"jdk-17.0.2+8/bin/jlink": {mode: 0o755, body: "#!/bin/sh\necho broken module path >&2\nexit 3\n"},
	})
	rs := newRuntimeServer(t, archive)
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, rs.URL)

	_, err := p.Ensure(context.Background(), 17)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLink)
	assert.Contains(t, err.Error(), "broken module path")
	assert.NoDirExists(t, p.Dir(17))
	assertNoScratch(t, layout)
}

func TestProvisioner_Installed(t *testing.T) {
	p, layout := newProvisioner(t, platform.Platform{OS: platform.Linux, Arch: platform.X64}, "http://api.test")

	runtimes, err := p.Installed()
	require.NoError(t, err)
	assert.Empty(t, runtimes)

	java8 := layout.RuntimeDir("java8-linux-x64")
	require.NoError(t, os.MkdirAll(java8, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(java8, "release"), []byte("JAVA_VERSION=\"1.8.0_292\"\n"), 0o644))
	require.NoError(t, os.MkdirAll(layout.RuntimeDir("java17-macos-arm64"), 0o755))
	require.NoError(t, os.MkdirAll(layout.RuntimeDir(".provision-123"), 0o755))
	require.NoError(t, os.WriteFile(layout.RuntimeDir("java21-linux-x64"), []byte("not a dir"), 0o644))

	runtimes, err = p.Installed()
	require.NoError(t, err)
	require.Len(t, runtimes, 2)

	assert.Equal(t, "java17-macos-arm64", runtimes[0].Name)
	assert.Equal(t, 17, runtimes[0].Major)
	assert.Equal(t, "macos-arm64", runtimes[0].Platform)
	assert.Empty(t, runtimes[0].Version)

	assert.Equal(t, "java8-linux-x64", runtimes[1].Name)
	assert.Equal(t, 8, runtimes[1].Major)
	assert.Equal(t, "1.8.0+292", runtimes[1].Version)
}
