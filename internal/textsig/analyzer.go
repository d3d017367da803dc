// Package textsig extracts phishing signals from email text content:
// urgency pressure, credential and payment requests, lexical errors,
// language mixing, brand mentions, and threat phrasing.
package textsig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/theopenlane/phishguard/internal/types"
)

const (
	// urgencyReportThreshold is the urgency score above which a signal
	// description is emitted
	urgencyReportThreshold = 0.3
	// lexicalErrorReportThreshold is the error count above which a
	// signal description is emitted
	lexicalErrorReportThreshold = 2
	// languageIndicatorFloor is the per-language occurrence count both
	// languages must exceed to count as mixing
	languageIndicatorFloor = 2
	// allCapsReportCount is the number of shouting words above which a
	// lexical error is counted
	allCapsReportCount = 3
	// timeSensitiveWeight is the partial match credited per
	// time-sensitive phrase
	timeSensitiveWeight = 0.5
	// maxBrandsInDescription caps the brands listed in the description
	maxBrandsInDescription = 3
)

// Score weight constants
const (
	weightUrgency            = 20
	weightCredentialRequest  = 30
	weightPaymentRequest     = 25
	weightPerLexicalError    = 3
	maxLexicalErrorScore     = 15
	weightLanguageMixing     = 10
	weightPerBrandMention    = 5
	maxBrandMentionScore     = 15
	weightPerThreatIndicator = 8
	maxThreatIndicatorScore  = 20
	maxScore                 = 100
)

// Analyzer extracts content signals from email text
type Analyzer struct {
	brands []string
}

// AnalyzerOption configures the Analyzer
type AnalyzerOption func(*Analyzer)

// WithBrandEntities overrides the brand names scanned for mentions
func WithBrandEntities(brands []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(brands) > 0 {
			a.brands = brands
		}
	}
}

// NewAnalyzer creates a content signal analyzer
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		brands: defaultBrandEntities,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze extracts the typed signals and their Spanish descriptions
// from the text content. Empty content yields zero signals.
func (a *Analyzer) Analyze(textContent string) (types.NLPSignals, []string) {
	if textContent == "" {
		return types.NLPSignals{}, nil
	}

	clean := normalize(textContent)

	signals := types.NLPSignals{}

	var descriptions []string

	signals.UrgencyScore = urgencyScore(clean)
	if signals.UrgencyScore > urgencyReportThreshold {
		descriptions = append(descriptions, fmt.Sprintf("Urgencia detectada (score: %.2f)", signals.UrgencyScore))
	}

	signals.CredentialRequest = checkCredentialRequest(clean)
	if signals.CredentialRequest {
		descriptions = append(descriptions, "Solicitud de credenciales")
	}

	signals.PaymentRequest = checkPaymentRequest(clean)
	if signals.PaymentRequest {
		descriptions = append(descriptions, "Solicitud de información financiera")
	}

	// shouting is checked on the raw text, normalization lowercases
	signals.LexicalErrors = countLexicalErrors(clean, textContent)
	if signals.LexicalErrors > lexicalErrorReportThreshold {
		descriptions = append(descriptions, fmt.Sprintf("Errores léxicos (%d)", signals.LexicalErrors))
	}

	signals.LanguageMixing = checkLanguageMixing(clean)
	if signals.LanguageMixing {
		descriptions = append(descriptions, "Mezcla de idiomas detectada")
	}

	signals.BrandMentions = a.extractBrandMentions(clean)
	if len(signals.BrandMentions) > 0 {
		listed := signals.BrandMentions[:min(len(signals.BrandMentions), maxBrandsInDescription)]
		descriptions = append(descriptions, "Marcas mencionadas: "+strings.Join(listed, ", "))
	}

	signals.ThreatIndicators = extractThreatIndicators(clean)
	if len(signals.ThreatIndicators) > 0 {
		descriptions = append(descriptions, "Indicadores de amenaza detectados")
	}

	return signals, descriptions
}

// Score computes the content risk score (0-100) from the signals
func Score(signals types.NLPSignals) float64 {
	score := signals.UrgencyScore * weightUrgency

	if signals.CredentialRequest {
		score += weightCredentialRequest
	}

	if signals.PaymentRequest {
		score += weightPaymentRequest
	}

	score += min(float64(signals.LexicalErrors*weightPerLexicalError), maxLexicalErrorScore)

	if signals.LanguageMixing {
		score += weightLanguageMixing
	}

	if len(signals.BrandMentions) > 0 {
		score += min(float64(len(signals.BrandMentions)*weightPerBrandMention), maxBrandMentionScore)
	}

	if len(signals.ThreatIndicators) > 0 {
		score += min(float64(len(signals.ThreatIndicators)*weightPerThreatIndicator), maxThreatIndicatorScore)
	}

	return min(score, maxScore)
}

// normalize strips HTML entities, collapses whitespace, and lowercases
func normalize(text string) string {
	text = htmlEntityPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.ToLower(strings.TrimSpace(text))
}

// urgencyScore returns the 0-1 urgency level: the fraction of urgency
// pattern families present, with time-sensitive phrases counting half
func urgencyScore(text string) float64 {
	matches := 0.0

	for _, pattern := range urgencyPatterns {
		if pattern.MatchString(text) {
			matches++
		}
	}

	for _, pattern := range timeSensitivePatterns {
		if pattern.MatchString(text) {
			matches += timeSensitiveWeight
		}
	}

	return min(matches/float64(len(urgencyPatterns)), 1.0)
}

// checkCredentialRequest reports whether the text asks for credentials,
// either via a direct pattern or a credential word paired with an
// action word
func checkCredentialRequest(text string) bool {
	for _, pattern := range credentialPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	return containsAny(text, credentialWords) && containsAny(text, credentialActionWords)
}

// checkPaymentRequest reports whether the text asks for money or
// banking details
func checkPaymentRequest(text string) bool {
	for _, pattern := range paymentPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	return containsAny(text, financialWords) && containsAny(text, paymentActionWords)
}

// countLexicalErrors counts grammar slips plus punctuation and
// capitalization tells
func countLexicalErrors(clean, raw string) int {
	count := 0

	for _, pattern := range lexicalErrorPatterns {
		count += len(pattern.FindAllString(clean, -1))
	}

	if repeatedPunctuationPattern.MatchString(clean) {
		count++
	}

	if len(allCapsWordPattern.FindAllString(raw, -1)) > allCapsReportCount {
		count++
	}

	if tightPunctuationPattern.MatchString(clean) {
		count++
	}

	return count
}

// checkLanguageMixing reports whether Spanish and English both have a
// significant presence in the text
func checkLanguageMixing(text string) bool {
	return countOccurrences(text, spanishIndicatorPatterns) > languageIndicatorFloor &&
		countOccurrences(text, englishIndicatorPatterns) > languageIndicatorFloor
}

// extractBrandMentions returns the known brands mentioned in the text,
// in list order
func (a *Analyzer) extractBrandMentions(text string) []string {
	var mentioned []string

	for _, brand := range a.brands {
		if strings.Contains(text, brand) {
			mentioned = append(mentioned, brand)
		}
	}

	return mentioned
}

// extractThreatIndicators returns the deduplicated threat phrases
// found in the text
func extractThreatIndicators(text string) []string {
	var indicators []string

	for _, pattern := range threatPatterns {
		indicators = append(indicators, pattern.FindAllString(text, -1)...)
	}

	for _, phrase := range additionalThreatPhrases {
		if strings.Contains(text, phrase) {
			indicators = append(indicators, phrase)
		}
	}

	return lo.Uniq(indicators)
}

// containsAny reports whether any of the words appear in the text
func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}

	return false
}

// countOccurrences totals pattern matches across the pattern list
func countOccurrences(text string, patterns []*regexp.Regexp) int {
	count := 0

	for _, pattern := range patterns {
		count += len(pattern.FindAllString(text, -1))
	}

	return count
}
