package install

import (
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

	"github.com/TheDevelo/minelaunch/internal/download"
	"github.com/TheDevelo/minelaunch/internal/minecraft"
	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

var linux64 = platform.Platform{OS: platform.Linux, Arch: platform.X64}

// contentServer serves fixed files and counts requests per path.
type contentServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

func newContentServer(t *testing.T) *contentServer {
	t.Helper()
	cs := &contentServer{files: make(map[string][]byte), hits: make(map[string]int)}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.hits[r.URL.Path]++
		body, ok := cs.files[r.URL.Path]
		cs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

// add serves body at path and returns its descriptor.
func (cs *contentServer) add(path string, body []byte) minecraft.Download {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.files[path] = body
	return minecraft.Download{SHA1: digest(body), Size: int64(len(body)), URL: cs.URL + path}
}

func (cs *contentServer) addJSON(t *testing.T, path string, v interface{}) minecraft.Download {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return cs.add(path, data)
}

func (cs *contentServer) hitCount(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

func (cs *contentServer) totalHits() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	n := 0
	for _, h := range cs.hits {
		n += h
	}
	return n
}

func digest(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
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

func testFetcher() *download.Fetcher {
	return download.NewFetcher(&download.Config{Concurrency: 4})
}
