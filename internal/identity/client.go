package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/TheDevelo/minelaunch/internal/state"
)

const (
	// DefaultBaseURL is the default Mojang API base URL.
	DefaultBaseURL = "https://api.mojang.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 10 * time.Second

	// UserAgent is the user agent string sent with API requests.
	UserAgent = "minelaunch/dev (https://github.com/TheDevelo/minelaunch)"

	// RateLimitDelay is the delay between retries when rate limited.
	RateLimitDelay = 2 * time.Second

	// MaxRetries is the maximum number of retries for failed requests.
	MaxRetries = 3
)

// profileResponse is the body of the Mojang profile API.
type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is a Mojang API client for UUID lookups.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	userAgent      string
	rateLimitDelay time.Duration
}

// Config holds client configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	RateLimitDelay time.Duration
}

// NewClient creates a new Mojang API client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.RateLimitDelay == 0 {
		config.RateLimitDelay = RateLimitDelay
	}

	slog.Debug("creating Mojang API client",
		"base_url", config.BaseURL,
		"timeout", config.Timeout)

	return &Client{
		baseURL:        config.BaseURL,
		httpClient:     &http.Client{Timeout: config.Timeout},
		userAgent:      config.UserAgent,
		rateLimitDelay: config.RateLimitDelay,
	}
}

// Lookup returns the online profile of username.
func (c *Client) Lookup(ctx context.Context, username string) (Profile, error) {
	if err := state.ValidatePlayerName(username); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidUsername, err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.rateLimitDelay
			slog.Debug("retrying mojang API request",
				"username", username,
				"attempt", attempt+1,
				"delay", delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Profile{}, ctx.Err()
			}
		}

		profile, err := c.query(ctx, username)
		if err == nil {
			return profile, nil
		}
		lastErr = err

		// Only rate limiting is worth retrying
		if !errors.Is(err, ErrRateLimitExceeded) {
			return Profile{}, err
		}
	}

	return Profile{}, fmt.Errorf("failed after %d attempts: %w", MaxRetries, lastErr)
}

func (c *Client) query(ctx context.Context, username string) (Profile, error) {
	url := fmt.Sprintf("%s/users/profiles/minecraft/%s", c.baseURL, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("mojang API request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrAPIUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		var body profileResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return Profile{}, fmt.Errorf("decode response: %w", err)
		}

		id, err := uuid.Parse(body.ID)
		if err != nil {
			return Profile{}, fmt.Errorf("decode response: invalid id %q: %w", body.ID, err)
		}

		slog.Debug("mojang UUID lookup success",
			"username", body.Name,
			"uuid", id)

		return Profile{UUID: id, Username: body.Name, Online: true}, nil

	case http.StatusNoContent, http.StatusNotFound:
		slog.Debug("mojang username not found", "username", username)
		return Profile{}, ErrUsernameNotFound

	case http.StatusTooManyRequests:
		slog.Warn("mojang API rate limit exceeded")
		return Profile{}, ErrRateLimitExceeded

	default:
		body, _ := io.ReadAll(resp.Body)
		return Profile{}, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
}

// Resolve returns the profile a launch should use. With online set it asks
// the profile API and falls back to the offline profile when the lookup
// fails; otherwise it derives the offline profile directly.
func (c *Client) Resolve(ctx context.Context, username string, online bool) Profile {
	if !online {
		return Offline(username)
	}

	profile, err := c.Lookup(ctx, username)
	if err != nil {
		slog.Warn("online UUID lookup failed, using offline UUID",
			"username", username,
			"error", err)
		return Offline(username)
	}

	return profile
}
