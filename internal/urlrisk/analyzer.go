// Package urlrisk extracts candidate URLs from email content and
// evaluates each against lexical, domain-similarity, and best-effort
// network heuristics under a strict per-URL time budget.
package urlrisk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	rdaplib "github.com/openrdap/rdap"
	"github.com/rs/zerolog"

	"github.com/theopenlane/phishguard/internal/types"
)

const (
	// defaultMaxURLs bounds the number of candidates analyzed per email
	defaultMaxURLs = 10
	// defaultURLBudget is the overall analysis budget per URL
	defaultURLBudget = 300 * time.Millisecond
	// defaultNetworkFloor is the minimum remaining budget required to
	// attempt network checks at all
	defaultNetworkFloor = 100 * time.Millisecond
	// defaultDNSServer is the resolver used when none is configured
	defaultDNSServer = "8.8.8.8:53"
	// maxRedirectsBeforeFlag is the redirect count above which a reason
	// is recorded
	maxRedirectsBeforeFlag = 2
	// recentDomainAgeDays flags domains registered fewer days ago
	recentDomainAgeDays = 30
)

// DomainBlocklist reports whether a domain is on a known phishing
// blocklist. Implementations must be safe for concurrent use.
type DomainBlocklist interface {
	Contains(domain string) bool
}

// Analyzer evaluates URLs for phishing indicators. Candidates are
// analyzed concurrently; a failure in one never aborts its siblings.
type Analyzer struct {
	logger       zerolog.Logger
	httpClient   *http.Client
	dnsClient    *dns.Client
	dnsServer    string
	rdapClient   *rdaplib.Client
	blocklist    DomainBlocklist
	brands       []string
	urlBudget    time.Duration
	networkFloor time.Duration
	maxURLs      int
}

// AnalyzerOption configures the Analyzer
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger used for degraded-analysis diagnostics
func WithLogger(logger zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client used for redirect probes
func WithHTTPClient(client *http.Client) AnalyzerOption {
	return func(a *Analyzer) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithDNSServer overrides the DNS server used for existence checks
func WithDNSServer(server string) AnalyzerOption {
	return func(a *Analyzer) {
		if server != "" {
			a.dnsServer = server
		}
	}
}

// WithRDAPClient overrides the RDAP client used for registration age
func WithRDAPClient(client *rdaplib.Client) AnalyzerOption {
	return func(a *Analyzer) {
		if client != nil {
			a.rdapClient = client
		}
	}
}

// WithBrandDomains overrides the legitimate-brand domain list used for
// look-alike similarity checks
func WithBrandDomains(brands []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(brands) > 0 {
			a.brands = brands
		}
	}
}

// WithBlocklist enables known phishing domain lookups
func WithBlocklist(b DomainBlocklist) AnalyzerOption {
	return func(a *Analyzer) {
		if b != nil {
			a.blocklist = b
		}
	}
}

// WithURLBudget overrides the per-URL analysis budget
func WithURLBudget(budget time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if budget > 0 {
			a.urlBudget = budget
		}
	}
}

// WithMaxURLs overrides the candidate cap per email
func WithMaxURLs(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxURLs = n
		}
	}
}

// NewAnalyzer creates a URL risk analyzer
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		logger:       zerolog.Nop(),
		httpClient:   &http.Client{Timeout: defaultURLBudget},
		dnsClient:    &dns.Client{Timeout: defaultURLBudget},
		dnsServer:    defaultDNSServer,
		rdapClient:   &rdaplib.Client{},
		brands:       defaultBrandDomains,
		urlBudget:    defaultURLBudget,
		networkFloor: defaultNetworkFloor,
		maxURLs:      defaultMaxURLs,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// urlOutcome pairs the optional finding with the always-present metadata
type urlOutcome struct {
	finding  *types.URLFinding
	metadata types.URLMetadata
}

// Analyze extracts candidate URLs from the HTML and text content and
// evaluates each concurrently. One metadata record is produced per
// candidate, even when its analysis fails; findings are produced only
// for URLs with at least one triggered heuristic.
func (a *Analyzer) Analyze(ctx context.Context, htmlContent, textContent string) ([]types.URLFinding, []types.URLMetadata) {
	candidates := extractURLs(htmlContent, textContent)
	if len(candidates) == 0 {
		return nil, nil
	}

	if len(candidates) > a.maxURLs {
		candidates = candidates[:a.maxURLs]
	}

	outcomes := make([]urlOutcome, len(candidates))

	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)

		go func(idx int, raw string) {
			defer wg.Done()

			// a panicking candidate degrades to a metadata stub and
			// must not take its siblings down with it
			defer func() {
				if r := recover(); r != nil {
					a.logger.Warn().Str("url", raw).Interface("panic", r).Msg("url analysis panicked")

					outcomes[idx] = urlOutcome{metadata: stubMetadata(raw)}
				}
			}()

			finding, metadata := a.analyzeURL(ctx, raw)
			outcomes[idx] = urlOutcome{finding: finding, metadata: metadata}
		}(i, candidate)
	}

	wg.Wait()

	var findings []types.URLFinding

	metadata := make([]types.URLMetadata, 0, len(outcomes))

	for _, outcome := range outcomes {
		if outcome.finding != nil {
			findings = append(findings, *outcome.finding)
		}

		metadata = append(metadata, outcome.metadata)
	}

	return findings, metadata
}

// analyzeURL runs the lexical, similarity, and network heuristics for a
// single candidate under the per-URL budget
func (a *Analyzer) analyzeURL(ctx context.Context, raw string) (*types.URLFinding, types.URLMetadata) {
	started := time.Now()

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return nil, stubMetadata(raw)
	}

	domain := strings.ToLower(parsed.Hostname())

	metadata := types.URLMetadata{
		URL:    raw,
		Domain: domain,
		HTTPS:  parsed.Scheme == "https",
	}

	var reasons []string

	level := types.RiskLevelLow

	// the blocklist verdict goes first so it always survives the
	// two-reason cap on findings
	if a.blocklist != nil && a.blocklist.Contains(domain) {
		metadata.BlacklistHit = true

		reasons = append(reasons, "Known phishing domain")
		level = maxRiskLevel(level, types.RiskLevelHigh)
	}

	if matchesSuspiciousPattern(raw) {
		reasons = append(reasons, "Suspicious pattern detected")
		level = maxRiskLevel(level, types.RiskLevelMedium)
	}

	if isIPLiteralHost(domain) {
		reasons = append(reasons, "Uses IP address instead of domain")
		level = maxRiskLevel(level, types.RiskLevelHigh)
	}

	if isKnownShortener(domain) {
		reasons = append(reasons, "URL shortener detected")
		level = maxRiskLevel(level, types.RiskLevelMedium)
	}

	if !metadata.HTTPS {
		reasons = append(reasons, "No HTTPS encryption")
		level = maxRiskLevel(level, types.RiskLevelMedium)
	}

	if similarity, ok := a.brandSimilarity(domain); ok {
		metadata.DomainSimilarity = &similarity

		if similarity > highSimilarityThreshold {
			reasons = append(reasons, "Similar to legitimate domain")
			level = maxRiskLevel(level, types.RiskLevelHigh)
		}
	}

	// network checks only run when enough of the budget remains; a
	// lexical-only verdict is still a valid verdict
	remaining := a.urlBudget - time.Since(started)
	if remaining >= a.networkFloor {
		a.networkChecks(ctx, raw, &metadata, &reasons, remaining)
	}

	if len(reasons) == 0 {
		return nil, metadata
	}

	finding := &types.URLFinding{
		URL:       raw,
		Reason:    strings.Join(reasons[:min(len(reasons), 2)], "; "),
		RiskLevel: level,
	}

	return finding, metadata
}

// stubMetadata builds the minimal record kept for a failed analysis
func stubMetadata(raw string) types.URLMetadata {
	domain := ""
	if parsed, err := url.Parse(raw); err == nil {
		domain = strings.ToLower(parsed.Hostname())
	}

	return types.URLMetadata{
		URL:            raw,
		Domain:         domain,
		AnalysisFailed: true,
	}
}

// riskRank orders risk levels for severity comparisons
func riskRank(level types.RiskLevel) int {
	switch level {
	case types.RiskLevelHigh:
		return 2
	case types.RiskLevelMedium:
		return 1
	default:
		return 0
	}
}

// maxRiskLevel returns the more severe of two risk levels
func maxRiskLevel(a, b types.RiskLevel) types.RiskLevel {
	if riskRank(b) > riskRank(a) {
		return b
	}

	return a
}
