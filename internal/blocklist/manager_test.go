package blocklist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeedConfig(t *testing.T) {
	cfg, err := DecodeFeedConfig(strings.NewReader(`{"feeds": [{"name": "openphish", "url": "https://example.com/feed.txt"}]}`))
	require.NoError(t, err)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "openphish", cfg.Feeds[0].Name)
}

func TestDecodeFeedConfig_RejectsIncompleteEntries(t *testing.T) {
	_, err := DecodeFeedConfig(strings.NewReader(`{"feeds": [{"name": "openphish"}]}`))
	require.ErrorIs(t, err, ErrInvalidFeed)
}

func TestNewManager_RequiresFeeds(t *testing.T) {
	_, err := NewManager(FeedConfig{})
	require.ErrorIs(t, err, ErrNoFeeds)
}

func TestHydrateAndContains(t *testing.T) {
	feedBody := `# phishing feed
https://secure.evil-login.com/account/verify
paypa1-secure.net
not a domain
`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	defer server.Close()

	manager, err := NewManager(
		FeedConfig{Feeds: []Feed{{Name: "testfeed", URL: server.URL}}},
		WithStorageDir(t.TempDir()),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	// lookups before hydration never match
	assert.False(t, manager.Contains("evil-login.com"))

	summary, err := manager.Hydrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SuccessfulFeeds)
	assert.Equal(t, 0, summary.FailedFeeds)
	assert.Equal(t, 2, summary.TotalDomains)
	assert.Equal(t, 2, manager.Size())

	assert.True(t, manager.Contains("secure.evil-login.com"))
	assert.True(t, manager.Contains("paypa1-secure.net"))
	assert.True(t, manager.Contains("login.paypa1-secure.net"))
	assert.False(t, manager.Contains("example.com"))
}

func TestHydrate_FailedFeedCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	manager, err := NewManager(
		FeedConfig{Feeds: []Feed{{Name: "broken", URL: server.URL}}},
		WithStorageDir(t.TempDir()),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	summary, err := manager.Hydrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FailedFeeds)
	assert.Equal(t, 0, summary.TotalDomains)
	require.Len(t, summary.Feeds, 1)
	assert.NotEmpty(t, summary.Feeds[0].Error)
}

func TestHydrate_UsesCachedCopyOnDownloadFailure(t *testing.T) {
	healthy := true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write([]byte("evil-login.com\n"))
	}))
	defer server.Close()

	manager, err := NewManager(
		FeedConfig{Feeds: []Feed{{Name: "flaky", URL: server.URL}}},
		WithStorageDir(t.TempDir()),
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	_, err = manager.Hydrate(context.Background())
	require.NoError(t, err)
	require.True(t, manager.Contains("evil-login.com"))

	healthy = false

	summary, err := manager.Hydrate(context.Background())
	require.NoError(t, err)

	// the cached copy keeps the feed usable
	assert.Equal(t, 1, summary.SuccessfulFeeds)
	assert.True(t, manager.Contains("evil-login.com"))
}
