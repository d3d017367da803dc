// Package emailauth analyzes raw email header blocks for authenticity
// signals: SPF/DKIM/DMARC alignment, reply-to mismatches, display-name
// spoofing, punycode addresses, and routing anomalies.
package emailauth

import (
	"net/mail"
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// Weight constants for header risk scoring
const (
	weightAuthFail         = 35
	weightAuthMismatch     = 20
	weightReplyToMismatch  = 15
	weightDisplayNameSpoof = 25
	weightPunycode         = 20
	weightSuspiciousChain  = 10

	// maxScore caps the additive header risk score
	maxScore = 100
)

// Analyzer inspects raw header text for phishing indicators. Analysis is
// a pure function of its input: identical header text always yields
// identical findings and score.
type Analyzer struct {
	brands []brandPattern
}

// AnalyzerOption configures the Analyzer
type AnalyzerOption func(*Analyzer)

// WithBrandPatterns overrides the brand spoofing pattern table
func WithBrandPatterns(brands []brandPattern) AnalyzerOption {
	return func(a *Analyzer) {
		if len(brands) > 0 {
			a.brands = brands
		}
	}
}

// NewAnalyzer creates a header authenticity analyzer
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		brands: defaultBrandPatterns,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze parses the raw header block and returns findings plus parse
// details. Unparseable input is swallowed: the analyzer never fails and
// returns default (all-clear) findings instead.
func (a *Analyzer) Analyze(rawHeaders string) (types.HeaderFindings, types.HeaderDetails) {
	findings := types.DefaultHeaderFindings()
	details := types.HeaderDetails{}

	header, ok := parseHeaderBlock(rawHeaders)
	if !ok {
		return findings, details
	}

	spf := parseSPF(header)
	dkim := parseDKIM(header)
	dmarc := parseDMARC(header)

	findings.SPFDKIMDMARC = combineAuthStatus(spf, dkim, dmarc)
	details.AuthenticationResults = map[string]string{
		"spf":   spf,
		"dkim":  dkim,
		"dmarc": dmarc,
	}

	findings.ReplyToMismatch = checkReplyToMismatch(header.Get("From"), header.Get("Reply-To"))
	findings.DisplayNameSpoof = a.checkDisplayNameSpoof(header.Get("From"))
	findings.PunycodeDetected = checkPunycode(header.Get("From"), header.Get("Reply-To"))

	received := header["Received"]
	details.ReceivedChain = received

	suspicious, anomalies := analyzeReceivedChain(received)
	findings.SuspiciousReceived = suspicious
	details.RoutingAnomalies = anomalies

	return findings, details
}

// Score computes the additive header risk score (0-100) from findings
func (a *Analyzer) Score(findings types.HeaderFindings) float64 {
	score := 0.0

	switch findings.SPFDKIMDMARC {
	case types.AuthStatusFail:
		score += weightAuthFail
	case types.AuthStatusMismatch:
		score += weightAuthMismatch
	}

	if findings.ReplyToMismatch {
		score += weightReplyToMismatch
	}

	if findings.DisplayNameSpoof {
		score += weightDisplayNameSpoof
	}

	if findings.PunycodeDetected {
		score += weightPunycode
	}

	if findings.SuspiciousReceived {
		score += weightSuspiciousChain
	}

	return min(score, maxScore)
}

// parseHeaderBlock parses a raw header block into a mail.Header. The
// block may or may not be terminated by a blank line.
func parseHeaderBlock(raw string) (mail.Header, bool) {
	trimmed := strings.TrimLeft(raw, "\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil, false
	}

	msg, err := mail.ReadMessage(strings.NewReader(trimmed + "\r\n\r\n"))
	if err != nil {
		return nil, false
	}

	return msg.Header, true
}

// checkPunycode reports whether any address field carries an xn-- label
func checkPunycode(from, replyTo string) bool {
	for _, field := range []string{from, replyTo} {
		if field != "" && strings.Contains(strings.ToLower(field), "xn--") {
			return true
		}
	}

	return false
}
