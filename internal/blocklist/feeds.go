package blocklist

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FeedConfig represents the set of phishing domain feeds to hydrate from.
type FeedConfig struct {
	Feeds []Feed `json:"feeds"`
}

// Feed describes a single plain-text feed of phishing URLs or domains.
type Feed struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LoadFeedConfig reads a feed configuration from disk.
func LoadFeedConfig(path string) (FeedConfig, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return FeedConfig{}, err
	}
	defer file.Close()

	return DecodeFeedConfig(file)
}

// DecodeFeedConfig parses a feed configuration from an arbitrary reader.
func DecodeFeedConfig(r io.Reader) (FeedConfig, error) {
	var cfg FeedConfig
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return FeedConfig{}, err
	}

	for _, feed := range cfg.Feeds {
		if strings.TrimSpace(feed.Name) == "" || strings.TrimSpace(feed.URL) == "" {
			return FeedConfig{}, ErrInvalidFeed
		}
	}

	return cfg, nil
}
