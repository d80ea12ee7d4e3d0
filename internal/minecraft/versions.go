package minecraft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gobwas/glob"
)

const (
	// VersionManifestURL is the Mojang API endpoint for the version manifest.
	VersionManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string sent with API requests.
	UserAgent = "minelaunch/dev (https://github.com/TheDevelo/minelaunch)"
)

// Version aliases resolved against the manifest's latest block.
const (
	AliasLatestRelease  = "latest-release"
	AliasLatestSnapshot = "latest-snapshot"
)

// VersionManifest represents the Mojang version manifest response.
type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionInfo `json:"versions"`
}

// VersionInfo represents a single Minecraft version entry.
type VersionInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // "release", "snapshot", "old_beta" or "old_alpha"
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

// Find returns the entry for id. The aliases latest-release and
// latest-snapshot resolve through the manifest's latest block.
func (m *VersionManifest) Find(id string) (VersionInfo, error) {
	switch id {
	case AliasLatestRelease:
		id = m.Latest.Release
	case AliasLatestSnapshot:
		id = m.Latest.Snapshot
	}

	for _, v := range m.Versions {
		if v.ID == id && id != "" {
			return v, nil
		}
	}

	return VersionInfo{}, fmt.Errorf("%w: %s", ErrVersionNotFound, id)
}

// Client is a Minecraft version API client.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	manifestURL string
}

// Config holds client configuration.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	ManifestURL string
}

// NewClient creates a new Minecraft version API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.ManifestURL == "" {
		config.ManifestURL = VersionManifestURL
	}

	slog.Debug("creating Minecraft version API client",
		"timeout", config.Timeout,
		"manifest_url", config.ManifestURL)

	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		userAgent:   config.UserAgent,
		manifestURL: config.ManifestURL,
	}
}

// GetVersionManifest fetches the version manifest.
// Network failures and non-200 responses wrap ErrUnavailable; a body that
// does not decode wraps ErrParse.
func (c *Client) GetVersionManifest(ctx context.Context) (*VersionManifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching Minecraft version manifest",
		"url", c.manifestURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUnavailable, resp.StatusCode)
	}

	var manifest VersionManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrParse, err)
	}

	slog.Debug("fetched version manifest",
		"total_versions", len(manifest.Versions),
		"latest_release", manifest.Latest.Release,
		"latest_snapshot", manifest.Latest.Snapshot)

	return &manifest, nil
}

// FilterVersions filters versions by type and applies a limit.
// Valid types are "release", "snapshot", "old_beta", "old_alpha" or "all".
// If limit is 0 or negative, all matching versions are returned.
func FilterVersions(versions []VersionInfo, versionType string, limit int) []VersionInfo {
	filtered := make([]VersionInfo, 0)

	for _, v := range versions {
		if versionType != "all" && v.Type != versionType {
			continue
		}

		filtered = append(filtered, v)

		if limit > 0 && len(filtered) >= limit {
			break
		}
	}

	return filtered
}

// MatchVersions keeps the versions whose id matches the glob pattern, e.g.
// "1.16.*". An empty pattern keeps everything.
func MatchVersions(versions []VersionInfo, pattern string) ([]VersionInfo, error) {
	if pattern == "" {
		return versions, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	matched := make([]VersionInfo, 0)
	for _, v := range versions {
		if g.Match(v.ID) {
			matched = append(matched, v)
		}
	}

	return matched, nil
}
