package urlrisk

import (
	"net"
	"regexp"
)

// suspiciousURLPatterns are lexical shapes common in phishing URLs:
// raw IPs, throwaway-TLD hyphen chains, action words padded with
// digits, and letter/digit mixes on generic TLDs
var suspiciousURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`),
	regexp.MustCompile(`[a-z0-9]+-[a-z0-9]+-[a-z0-9]+\.(?:tk|ml|ga|cf)`),
	regexp.MustCompile(`(?:secure|account|verify|update|login)[^\s]*[0-9]+`),
	regexp.MustCompile(`[a-z]+\d+[a-z]*\.(?:com|net|org)`),
}

// knownShorteners are URL shortener domains that hide the destination
var knownShorteners = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"t.co":        {},
	"goo.gl":      {},
	"short.link":  {},
	"ow.ly":       {},
	"buff.ly":     {},
	"s.id":        {},
	"rb.gy":       {},
}

// matchesSuspiciousPattern reports whether the URL matches any lexical
// phishing pattern
func matchesSuspiciousPattern(raw string) bool {
	for _, pattern := range suspiciousURLPatterns {
		if pattern.MatchString(raw) {
			return true
		}
	}

	return false
}

// isIPLiteralHost reports whether the host is a raw IP address
func isIPLiteralHost(host string) bool {
	return net.ParseIP(host) != nil
}

// isKnownShortener reports whether the domain is a known URL shortener
func isKnownShortener(domain string) bool {
	_, ok := knownShorteners[domain]
	return ok
}
