package blocklist

import "errors"

var (
	// ErrNoFeeds is returned when the feed configuration defines no feeds
	ErrNoFeeds = errors.New("feed configuration has no feeds defined")
	// ErrInvalidFeed is returned when a feed entry is missing its name or URL
	ErrInvalidFeed = errors.New("feed entries require both a name and a URL")
	// ErrUnexpectedStatus is returned when a feed download returns a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected feed response status")
)
