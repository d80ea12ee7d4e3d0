package launch

import (
	"archive/zip"
	"bytes"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

var linux64 = platform.Platform{OS: platform.Linux, Arch: platform.X64}

// fileServer serves fixed files and counts requests.
type fileServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	hits  int
}

func newFileServer(t *testing.T) *fileServer {
	t.Helper()
	fs := &fileServer{files: make(map[string][]byte)}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.hits++
		body, ok := fs.files[r.URL.Path]
		fs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fileServer) add(path string, body []byte) minecraft.Download {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = body
	return minecraft.Download{SHA1: digest(body), Size: int64(len(body)), URL: fs.URL + path}
}

func (fs *fileServer) addJSON(t *testing.T, path string, v interface{}) minecraft.Download {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return fs.add(path, data)
}

func (fs *fileServer) requestCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits
}

func digest(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func jarWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newLayout(t *testing.T) state.Layout {
	t.Helper()
	l, err := state.NewLayout(t.TempDir())
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
