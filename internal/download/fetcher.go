// Package download fetches remote files into the install tree and verifies
// them against their sha1 and size descriptors.
package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/remeh/sizedwaitgroup"

	"github.com/TheDevelo/minelaunch/internal/minecraft"
)

const (
	// DefaultConcurrency is the number of transfers a batch runs at once.
	DefaultConcurrency = 25

	// DefaultTimeout bounds a single transfer.
	DefaultTimeout = 10 * time.Minute

	// UserAgent is sent with every download.
	UserAgent = minecraft.UserAgent

	partSuffix = ".part"
)

// Item is one file to fetch.
type Item struct {
	// Dest is the absolute destination path.
	Dest string
	URL  string
	// Label names the item in logs, e.g. a library coordinate or asset name.
	Label string
	// Expect, when set, is checked against the downloaded bytes. Items
	// without it are trusted as received.
	Expect *minecraft.Download
}

// Result is the outcome of one item.
type Result struct {
	Item     Item
	Attempts int
	Err      error
}

// Config holds fetcher configuration.
type Config struct {
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
	// OnComplete is called once per item as it finishes. It may be called
	// from several goroutines at once.
	OnComplete func(Result)
}

// Fetcher runs bounded batches of verified downloads.
type Fetcher struct {
	client      *grab.Client
	concurrency int
	onComplete  func(Result)
}

// NewFetcher creates a fetcher.
func NewFetcher(config *Config) *Fetcher {
	if config == nil {
		config = &Config{}
	}

	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	client := grab.NewClient()
	client.UserAgent = config.UserAgent
	client.HTTPClient = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: config.Concurrency,
		},
	}

	slog.Debug("creating fetcher",
		"concurrency", config.Concurrency,
		"timeout", config.Timeout)

	return &Fetcher{
		client:      client,
		concurrency: config.Concurrency,
		onComplete:  config.OnComplete,
	}
}

// Concurrency returns the batch width.
func (f *Fetcher) Concurrency() int {
	return f.concurrency
}

// FetchAll downloads every item with at most Concurrency transfers in
// flight. A failing item does not stop the others. Results are returned in
// input order; the error joins every item error.
func (f *Fetcher) FetchAll(ctx context.Context, items []Item) ([]Result, error) {
	results := make([]Result, len(items))
	if len(items) == 0 {
		return results, nil
	}

	slog.Debug("starting download batch", "items", len(items), "concurrency", f.concurrency)

	swg := sizedwaitgroup.New(f.concurrency)
	for i := range items {
		swg.Add()
		go func(i int) {
			defer swg.Done()
			results[i] = f.fetch(ctx, items[i])
		}(i)
	}
	swg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	if len(errs) > 0 {
		slog.Warn("download batch finished with failures",
			"items", len(items),
			"failed", len(errs))
		return results, errors.Join(errs...)
	}

	slog.Debug("download batch complete", "items", len(items))
	return results, nil
}

// Missing returns the items whose destination does not already verify
// against Expect, checking up to Concurrency files at once. Items without
// Expect are missing only when the destination does not exist.
func (f *Fetcher) Missing(items []Item) []Item {
	stale := make([]bool, len(items))

	swg := sizedwaitgroup.New(f.concurrency)
	for i := range items {
		swg.Add()
		go func(i int) {
			defer swg.Done()
			stale[i] = !items[i].present()
		}(i)
	}
	swg.Wait()

	missing := make([]Item, 0)
	for i, it := range items {
		if stale[i] {
			missing = append(missing, it)
		}
	}
	return missing
}

// Fetch downloads a single item.
func (f *Fetcher) Fetch(ctx context.Context, item Item) error {
	return f.fetch(ctx, item).Err
}

func (f *Fetcher) fetch(ctx context.Context, item Item) Result {
	result := Result{Item: item}

	const maxAttempts = 2
	for result.Attempts < maxAttempts {
		result.Attempts++
		result.Err = f.attempt(ctx, item)
		if !errors.Is(result.Err, ErrIntegrity) {
			break
		}
		slog.Warn("downloaded file failed verification",
			"label", item.Label,
			"url", item.URL,
			"attempt", result.Attempts)
	}

	if result.Err != nil {
		result.Err = fmt.Errorf("fetch %s: %w", item.label(), result.Err)
	} else {
		slog.Debug("downloaded", "label", item.label(), "dest", item.Dest)
	}

	if f.onComplete != nil {
		f.onComplete(result)
	}

	return result
}

// attempt downloads to <dest>.part, verifies when asked and renames the
// part file over the destination. The part file never outlives a failure.
func (f *Fetcher) attempt(ctx context.Context, item Item) error {
	part := item.Dest + partSuffix

	if err := os.MkdirAll(filepath.Dir(item.Dest), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrIO, err)
	}
	if err := os.Remove(part); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove stale part file: %v", ErrIO, err)
	}

	req, err := grab.NewRequest(part, item.URL)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true

	resp := f.client.Do(req)
	if err := resp.Err(); err != nil {
		_ = os.Remove(part)
		return classify(item.URL, err)
	}

	if item.Expect != nil && !Verify(part, item.Expect.SHA1, item.Expect.Size) {
		_ = os.Remove(part)
		return fmt.Errorf("%w: %s does not match sha1 %s size %d",
			ErrIntegrity, item.URL, item.Expect.SHA1, item.Expect.Size)
	}

	if err := os.Rename(part, item.Dest); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("%w: rename: %v", ErrIO, err)
	}

	return nil
}

func classify(url string, err error) error {
	var status grab.StatusCodeError
	if errors.As(err, &status) {
		return &StatusError{URL: url, StatusCode: int(status)}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	return fmt.Errorf("%w: %s: %v", ErrTransport, url, err)
}

func (i Item) present() bool {
	if i.Expect == nil {
		_, err := os.Stat(i.Dest)
		return err == nil
	}
	return Verify(i.Dest, i.Expect.SHA1, i.Expect.Size)
}

func (i Item) label() string {
	if i.Label != "" {
		return i.Label
	}
	return filepath.Base(i.Dest)
}
