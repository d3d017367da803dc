// Package blocklist maintains a set of known phishing domains hydrated
// from plain-text OSINT feeds and serves membership lookups for URL
// analysis.
package blocklist

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/theopenlane/httpsling"
)

// defaultFetchTimeout bounds a single feed download
const defaultFetchTimeout = 90 * time.Second

// Manager coordinates downloading feeds, indexing domains, and serving
// lookups. Lookups before the first successful hydration report no
// matches rather than failing.
type Manager struct {
	mu           sync.RWMutex
	config       FeedConfig
	store        domainSet
	httpClient   *http.Client
	storageDir   string
	logger       zerolog.Logger
	hydrated     bool
	lastHydrated time.Time
}

// Option configures the Manager
type Option func(*Manager)

// WithStorageDir overrides the directory used to persist raw feed downloads
func WithStorageDir(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.storageDir = path
		}
	}
}

// WithHTTPClient supplies a custom HTTP client for feed downloads
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// WithLogger sets the logger used for hydration diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a blocklist manager with the provided feed configuration
func NewManager(cfg FeedConfig, opts ...Option) (*Manager, error) {
	if len(cfg.Feeds) == 0 {
		return nil, ErrNoFeeds
	}

	manager := &Manager{
		config:     cfg,
		store:      newDomainSet(),
		storageDir: "data/blocklist",
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager, nil
}

// HydrationSummary captures high-level results of a hydration run
type HydrationSummary struct {
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     time.Time     `json:"completed_at"`
	TotalFeeds      int           `json:"total_feeds"`
	SuccessfulFeeds int           `json:"successful_feeds"`
	FailedFeeds     int           `json:"failed_feeds"`
	TotalDomains    int           `json:"total_domains"`
	Feeds           []FeedSummary `json:"feeds"`
}

// FeedSummary captures the outcome for an individual feed download
type FeedSummary struct {
	Name     string        `json:"name"`
	URL      string        `json:"url"`
	Domains  int           `json:"domains"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Hydrate downloads all configured feeds concurrently and rebuilds the
// domain index. A feed that fails to download falls back to its cached
// copy from a previous run when one exists.
func (m *Manager) Hydrate(ctx context.Context) (HydrationSummary, error) {
	summary := HydrationSummary{
		StartedAt:  time.Now().UTC(),
		TotalFeeds: len(m.config.Feeds),
	}

	if err := os.MkdirAll(m.storageDir, 0o755); err != nil {
		return summary, fmt.Errorf("create storage dir: %w", err)
	}

	newStore := newDomainSet()

	var (
		storeMu   sync.Mutex
		summaryMu sync.Mutex
		wg        sync.WaitGroup
	)

	for _, feed := range m.config.Feeds {
		wg.Add(1)

		go func(feed Feed) {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}

			start := time.Now()
			feedSummary := FeedSummary{Name: feed.Name, URL: feed.URL}

			dest := filepath.Join(m.storageDir, feed.Name+".txt")

			storeMu.Lock()
			added, err := m.downloadAndIngest(ctx, feed, dest, newStore)
			storeMu.Unlock()

			if err != nil {
				feedSummary.Error = err.Error()
				m.logger.Warn().Str("feed", feed.Name).Err(err).Msg("blocklist feed hydration error")
			}

			feedSummary.Domains = added
			feedSummary.Duration = time.Since(start)

			summaryMu.Lock()

			if err == nil || added > 0 {
				summary.SuccessfulFeeds++
				summary.TotalDomains += added
			} else {
				summary.FailedFeeds++
			}

			summary.Feeds = append(summary.Feeds, feedSummary)
			summaryMu.Unlock()
		}(feed)
	}

	wg.Wait()

	summary.CompletedAt = time.Now().UTC()

	m.mu.Lock()
	m.store = newStore
	m.hydrated = true
	m.lastHydrated = summary.CompletedAt
	m.mu.Unlock()

	return summary, nil
}

// downloadAndIngest fetches one feed and indexes it, falling back to a
// previously cached copy when the download fails
func (m *Manager) downloadAndIngest(ctx context.Context, feed Feed, dest string, store domainSet) (int, error) {
	if err := m.fetchFeed(ctx, feed, dest); err != nil {
		if _, statErr := os.Stat(dest); statErr == nil {
			m.logger.Info().Str("feed", feed.Name).Err(err).Msg("using cached blocklist copy after download error")

			added, ingestErr := store.ingestFile(dest)
			if ingestErr != nil {
				return 0, fmt.Errorf("download failed (%v) and cached ingest failed: %w", err, ingestErr)
			}

			return added, fmt.Errorf("download failed, used cached copy: %w", err)
		}

		return 0, err
	}

	return store.ingestFile(dest)
}

// fetchFeed downloads a feed into a temp file and renames it into place
// so a partial download never clobbers a good cached copy
func (m *Manager) fetchFeed(ctx context.Context, feed Feed, dest string) error {
	tmp, err := os.CreateTemp(m.storageDir, feed.Name+"-*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	requester := httpsling.MustNew(
		httpsling.URL(feed.URL),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(m.httpClient),
	)

	resp, _, err := requester.ReceiveTo(ctx, tmp)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

// Contains reports whether the domain or any of its parent domains is
// on the blocklist. Returns false before the first hydration.
func (m *Manager) Contains(domain string) bool {
	if domain == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hydrated {
		return false
	}

	return m.store.contains(domain)
}

// Size returns the number of indexed domains
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.store)
}
