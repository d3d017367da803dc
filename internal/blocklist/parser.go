package blocklist

import (
	"net/url"
	"regexp"
	"strings"
)

// domainPattern matches a bare DNS name with at least two labels
var domainPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`)

// parseDomain extracts a lowercase domain from a raw feed line. Feeds
// carry either full URLs (OpenPhish style) or bare domains, one per
// line, with # comments. Lines carrying neither yield an empty string.
func parseDomain(line string) string {
	cleaned := sanitizeLine(line)
	if cleaned == "" {
		return ""
	}

	candidate := strings.ToLower(strings.Fields(cleaned)[0])

	if host := hostFromURL(candidate); host != "" {
		candidate = host
	}

	candidate = strings.TrimSuffix(candidate, ".")

	if !domainPattern.MatchString(candidate) {
		return ""
	}

	return candidate
}

// hostFromURL returns the hostname of a URL-shaped line, without port
func hostFromURL(raw string) string {
	if !strings.Contains(raw, "://") {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}

	return parsed.Hostname()
}

// sanitizeLine trims whitespace and strips trailing comments
func sanitizeLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}

	return strings.TrimSpace(line)
}
