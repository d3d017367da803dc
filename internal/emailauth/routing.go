package emailauth

import (
	"fmt"
	"regexp"
	"strings"
)

// minChainIndicators is the anomaly count required to flag the chain
const minChainIndicators = 2

// suspiciousTLDs are cheap or abuse-heavy TLDs that rarely appear in
// legitimate relay hostnames
var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".click", ".download",
	".bid", ".loan", ".racing", ".accountant", ".science", ".work",
}

// privateIPPattern matches loopback and RFC 1918 address prefixes
var privateIPPattern = regexp.MustCompile(`\b(?:127\.|192\.168\.|10\.|172\.(?:1[6-9]|2[0-9]|3[0-1])\.)`)

// hopStructurePattern matches the expected "by X for Y" hop structure
var hopStructurePattern = regexp.MustCompile(`by .+ for .+`)

// analyzeReceivedChain scans Received header lines for suspicious TLDs,
// private IPs, and malformed hop structure. The chain is flagged when
// at least two indicators accumulate across all hops.
func analyzeReceivedChain(received []string) (bool, []string) {
	if len(received) == 0 {
		return false, nil
	}

	indicators := 0
	var anomalies []string

	for _, hop := range received {
		lower := strings.ToLower(hop)

		for _, tld := range suspiciousTLDs {
			if strings.Contains(lower, tld) {
				indicators++

				anomalies = append(anomalies, fmt.Sprintf("suspicious TLD %s in routing", tld))
			}
		}

		if privateIPPattern.MatchString(hop) {
			indicators++

			anomalies = append(anomalies, "private IP in routing")
		}

		if !hopStructurePattern.MatchString(lower) {
			indicators++

			anomalies = append(anomalies, "malformed received header")
		}
	}

	return indicators >= minChainIndicators, anomalies
}
