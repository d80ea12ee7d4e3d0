package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	got := NewClient(nil)
	assert.Equal(t, DefaultBaseURL, got.baseURL)
	assert.Equal(t, UserAgent, got.userAgent)
	assert.Equal(t, DefaultTimeout, got.httpClient.Timeout)

	got = NewClient(&Config{BaseURL: "https://custom.api.example.com", Timeout: 5 * time.Second, UserAgent: "custom-agent"})
	assert.Equal(t, "https://custom.api.example.com", got.baseURL)
	assert.Equal(t, "custom-agent", got.userAgent)
	assert.Equal(t, 5*time.Second, got.httpClient.Timeout)
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		statusCode int
		response   interface{}
		wantUUID   string
		wantName   string
		wantErr    error
	}{
		{
			name:       "successful lookup",
			username:   "Notch",
			statusCode: http.StatusOK,
			response:   profileResponse{ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"},
			wantUUID:   "069a79f4-44e9-4726-a5be-fca90e38aaf5",
			wantName:   "Notch",
		},
		{
			name:       "username not found",
			username:   "NoSuchPlayer",
			statusCode: http.StatusNoContent,
			wantErr:    ErrUsernameNotFound,
		},
		{
			name:       "404 not found",
			username:   "NoSuchPlayer",
			statusCode: http.StatusNotFound,
			wantErr:    ErrUsernameNotFound,
		},
		{
			name:     "invalid username",
			username: "bad name!",
			wantErr:  ErrInvalidUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/profiles/minecraft/"+tt.username, r.URL.Path)
				assert.NotEmpty(t, r.Header.Get("User-Agent"))

				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					_ = json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			client := NewClient(&Config{BaseURL: server.URL})
			profile, err := client.Lookup(context.Background(), tt.username)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUUID, profile.UUID.String())
			assert.Equal(t, tt.wantName, profile.Username)
			assert.True(t, profile.Online)
		})
	}
}

func TestClient_Lookup_RetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(profileResponse{ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"})
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, RateLimitDelay: time.Millisecond})
	profile, err := client.Lookup(context.Background(), "Notch")

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, "Notch", profile.Username)
}

func TestClient_Lookup_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := NewClient(&Config{BaseURL: server.URL}).Lookup(context.Background(), "Notch")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})

	offline := client.Resolve(context.Background(), "Notch", false)
	assert.Equal(t, OfflineUUID("Notch"), offline.UUID)
	assert.False(t, offline.Online)

	// Failed online lookups fall back to the offline identity
	fallback := client.Resolve(context.Background(), "Notch", true)
	assert.Equal(t, OfflineUUID("Notch"), fallback.UUID)
	assert.False(t, fallback.Online)
}
