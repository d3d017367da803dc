// Package types defines the data model shared across the phishguard
// classification pipeline. All records are request-scoped: each analyzer
// exclusively owns its output, the fusion stage owns the aggregate, and
// only the policy engine may mutate a ClassificationResponse after it
// has been produced.
package types

import (
	"strings"
	"time"
)

// Classification is the final verdict assigned to an email.
type Classification string

const (
	// ClassificationPhishing marks an email as an active phishing attempt
	ClassificationPhishing Classification = "phishing"
	// ClassificationSuspicious marks an email that warrants caution
	ClassificationSuspicious Classification = "sospechoso"
	// ClassificationSafe marks an email with no significant risk signals
	ClassificationSafe Classification = "seguro"
)

// Valid reports whether the classification is one of the allowed literals
func (c Classification) Valid() bool {
	switch c {
	case ClassificationPhishing, ClassificationSuspicious, ClassificationSafe:
		return true
	default:
		return false
	}
}

// AuthStatus is the combined SPF/DKIM/DMARC authentication verdict.
type AuthStatus string

const (
	// AuthStatusOK indicates sender authentication checks aligned
	AuthStatusOK AuthStatus = "ok"
	// AuthStatusMismatch indicates partial authentication failure
	AuthStatusMismatch AuthStatus = "mismatch"
	// AuthStatusFail indicates hard authentication failure
	AuthStatusFail AuthStatus = "fail"
)

// RiskLevel grades an individual URL finding.
type RiskLevel string

const (
	// RiskLevelLow is an internally-tracked level that never produces a finding
	RiskLevelLow RiskLevel = "low"
	// RiskLevelMedium marks a URL with at least one suspicious trait
	RiskLevelMedium RiskLevel = "medium"
	// RiskLevelHigh marks a URL with a strong phishing indicator
	RiskLevelHigh RiskLevel = "high"
)

// AttachmentMeta describes one attachment without its content
type AttachmentMeta struct {
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash,omitempty"`
}

// AccountContext carries per-account hints forwarded to the classifier
type AccountContext struct {
	UserLocale     string   `json:"user_locale"`
	TrustedSenders []string `json:"trusted_senders,omitempty"`
	OwnedDomains   []string `json:"owned_domains,omitempty"`
}

// ClassificationRequest is the inbound payload for a classification run
type ClassificationRequest struct {
	RawHeaders      string           `json:"raw_headers"`
	RawHTML         string           `json:"raw_html"`
	TextBody        string           `json:"text_body"`
	AttachmentsMeta []AttachmentMeta `json:"attachments_meta,omitempty"`
	AccountContext  AccountContext   `json:"account_context,omitempty"`
}

// HasContent reports whether at least one analyzable field is present
func (r *ClassificationRequest) HasContent() bool {
	return strings.TrimSpace(r.RawHeaders) != "" ||
		strings.TrimSpace(r.RawHTML) != "" ||
		strings.TrimSpace(r.TextBody) != ""
}

// HeaderFindings captures the header authenticity analysis outcome.
// Immutable once produced by the header analyzer.
type HeaderFindings struct {
	SPFDKIMDMARC       AuthStatus `json:"spf_dkim_dmarc"`
	ReplyToMismatch    bool       `json:"reply_to_mismatch"`
	DisplayNameSpoof   bool       `json:"display_name_spoof"`
	PunycodeDetected   bool       `json:"punycode_detected"`
	SuspiciousReceived bool       `json:"suspicious_received"`
}

// DefaultHeaderFindings returns the failure-default findings record
func DefaultHeaderFindings() HeaderFindings {
	return HeaderFindings{SPFDKIMDMARC: AuthStatusOK}
}

// HeaderDetails holds supplementary parse results for diagnostics
type HeaderDetails struct {
	ReceivedChain         []string          `json:"received_chain,omitempty"`
	AuthenticationResults map[string]string `json:"authentication_results,omitempty"`
	RoutingAnomalies      []string          `json:"routing_anomalies,omitempty"`
}

// URLFinding is emitted for every URL with at least one triggered heuristic
type URLFinding struct {
	URL       string    `json:"url"`
	Reason    string    `json:"reason"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// URLMetadata is produced for every analyzed candidate URL, including
// candidates whose analysis failed (minimal stub, AnalysisFailed set)
type URLMetadata struct {
	URL              string   `json:"url"`
	Domain           string   `json:"domain"`
	HTTPS            bool     `json:"https"`
	Redirections     int      `json:"redirections"`
	DomainSimilarity *float64 `json:"domain_similarity"`
	DomainResolves   *bool    `json:"domain_resolves,omitempty"`
	WhoisAgeDays     *int     `json:"whois_age_days"`
	BlacklistHit     bool     `json:"blacklist_hit"`
	FinalURL         string   `json:"final_url,omitempty"`
	ResponseCode     *int     `json:"response_code,omitempty"`
	AnalysisFailed   bool     `json:"analysis_failed,omitempty"`
}

// NLPSignals captures content analysis outputs
type NLPSignals struct {
	UrgencyScore      float64  `json:"urgency_score"`
	CredentialRequest bool     `json:"credential_request"`
	PaymentRequest    bool     `json:"payment_request"`
	LexicalErrors     int      `json:"lexical_errors"`
	LanguageMixing    bool     `json:"language_mixing"`
	BrandMentions     []string `json:"brand_mentions,omitempty"`
	ThreatIndicators  []string `json:"threat_indicators,omitempty"`
}

// SignalBag aggregates raw findings from all analyzers for downstream
// policy checks. NLPRaw carries the typed signals so the policy engine
// never has to sniff localized description text.
type SignalBag struct {
	HeaderFindings  HeaderFindings `json:"header_findings"`
	HeaderDetails   HeaderDetails  `json:"header_details,omitempty"`
	URLFindings     []URLFinding   `json:"url_findings,omitempty"`
	URLMetadata     []URLMetadata  `json:"url_metadata,omitempty"`
	NLPDescriptions []string       `json:"nlp_signals,omitempty"`
	NLPRaw          NLPSignals     `json:"nlp_raw,omitempty"`
}

// HeuristicFeatures is the fused output of the heuristic pipeline.
// Created once per request and never mutated after fusion completes.
type HeuristicFeatures struct {
	HeaderScore     float64   `json:"header_score"`
	URLScore        float64   `json:"url_score"`
	NLPScore        float64   `json:"nlp_score"`
	AttachmentScore float64   `json:"attachment_score"`
	TotalScore      float64   `json:"total_score"`
	Signals         SignalBag `json:"signals"`
}

// Evidence is the supporting detail attached to a classification
type Evidence struct {
	HeaderFindings HeaderFindings `json:"header_findings"`
	URLFindings    []URLFinding   `json:"url_findings"`
	NLPSignals     []string       `json:"nlp_signals"`
}

// Response limits enforced on every ClassificationResponse
const (
	// MaxTopReasons is the maximum number of reasons in a response
	MaxTopReasons = 3
	// MaxRecommendedActions is the maximum number of actions in a response
	MaxRecommendedActions = 3
	// MaxSummaryWords is the maximum word count of the summary
	MaxSummaryWords = 60
	// MaxRiskScore is the upper bound for any risk score
	MaxRiskScore = 100
)

// ClassificationResponse is the final, policy-compliant verdict.
// Only the security policy engine may mutate it after creation.
type ClassificationResponse struct {
	Classification      Classification `json:"classification"`
	RiskScore           int            `json:"risk_score"`
	TopReasons          []string       `json:"top_reasons"`
	NonTechnicalSummary string         `json:"non_technical_summary"`
	RecommendedActions  []string       `json:"recommended_actions"`
	Evidence            Evidence       `json:"evidence"`
	LatencyMs           int64          `json:"latency_ms"`
}

// Validate enforces the strict response contract: allowed classification
// literal, bounded score, bounded reason/action lists, bounded summary
func (r *ClassificationResponse) Validate() error {
	if !r.Classification.Valid() {
		return ErrInvalidClassification
	}

	if r.RiskScore < 0 || r.RiskScore > MaxRiskScore {
		return ErrInvalidRiskScore
	}

	if len(r.TopReasons) > MaxTopReasons {
		return ErrTooManyReasons
	}

	if len(r.RecommendedActions) > MaxRecommendedActions {
		return ErrTooManyActions
	}

	if len(strings.Fields(r.NonTechnicalSummary)) > MaxSummaryWords {
		return ErrSummaryTooLong
	}

	return nil
}

// PromptData is the input contract for the external classifier
type PromptData struct {
	HeadersRaw       string           `json:"headers_raw"`
	TextBody         string           `json:"text_body"`
	HTMLSnippets     []string         `json:"html_snippets"`
	AttachmentsMeta  []AttachmentMeta `json:"attachments_meta"`
	URLMetadata      []URLMetadata    `json:"url_metadata"`
	HeuristicSummary string           `json:"heuristic_summary"`
	AccountContext   AccountContext   `json:"account_context"`
	LatencyBudget    time.Duration    `json:"-"`
}
