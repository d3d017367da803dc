// Package redact masks personally identifiable information before any
// content leaves the service: email addresses, phone numbers, account
// numbers, and credit cards. Each redaction is tracked as a salted
// hash tag so audit logs can correlate without storing the value.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	// hashTagLength is the hex prefix length kept from the digest
	hashTagLength = 16
	// maxSnippetLength bounds each snippet handed to the classifier
	maxSnippetLength = 500
	// maxSnippets bounds how many snippets are extracted per email
	maxSnippets = 3
	// minSentenceLength skips fragments too short to carry signal
	minSentenceLength = 20
	// contextSentenceCount keeps a few non-keyword sentences for context
	contextSentenceCount = 3
)

var (
	emailPattern      = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern      = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?(?:\(?[0-9]{3}\)?[-.\s]?)?[0-9]{3}[-.\s]?[0-9]{4}\b`)
	accountPattern    = regexp.MustCompile(`(?i)\b(?:account|cuenta|número|number)[\s#:]*([0-9]{6,})\b`)
	creditCardPattern = regexp.MustCompile(`\b[0-9]{4}[-\s]?[0-9]{4}[-\s]?[0-9]{4}[-\s]?[0-9]{4}\b`)
	cardSeparators    = regexp.MustCompile(`[-\s]`)
	sentenceSplit     = regexp.MustCompile(`[.!?]+`)
)

// ipHeaderPrefixes are header names whose values are replaced outright
var ipHeaderPrefixes = []string{"x-forwarded-for:", "x-real-ip:", "x-client-ip:"}

// securityKeywords mark sentences worth forwarding to the classifier
var securityKeywords = []string{
	"urgent", "urgente",
	"immediate", "inmediato",
	"verify", "verificar",
	"account", "cuenta",
	"password", "contraseña",
	"click", "clic",
	"suspended", "suspendida",
	"expired", "expirada",
	"update", "actualizar",
}

// Redactor masks PII in email content and headers
type Redactor struct{}

// NewRedactor creates a PII redactor
func NewRedactor() *Redactor {
	return &Redactor{}
}

// RedactEmail masks the local part of an address: user@domain.com
// becomes u***r@domain.com
func (r *Redactor) RedactEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email
	}

	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}

	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}

// HashSensitiveData returns a short SHA-256 tag for correlating a
// redacted value in logs without storing it
func (r *Redactor) HashSensitiveData(data string) string {
	digest := sha256.Sum256([]byte(data))

	return hex.EncodeToString(digest[:])[:hashTagLength]
}

// RedactText masks PII in the text. With preserveContext the values are
// partially masked so surrounding analysis still works; without it they
// are replaced by category placeholders. The returned tags identify
// each redacted value by type and hash.
func (r *Redactor) RedactText(text string, preserveContext bool) (string, []string) {
	redacted := text

	var tags []string

	for _, email := range emailPattern.FindAllString(text, -1) {
		replacement := "[EMAIL_REDACTED]"
		if preserveContext {
			replacement = r.RedactEmail(email)
		}

		redacted = strings.ReplaceAll(redacted, email, replacement)
		tags = append(tags, fmt.Sprintf("email:%s", r.HashSensitiveData(email)))
	}

	for _, phone := range phonePattern.FindAllString(redacted, -1) {
		replacement := "[PHONE_REDACTED]"
		if preserveContext {
			replacement = maskKeepingEdges(phone, 3)
		}

		redacted = strings.ReplaceAll(redacted, phone, replacement)
		tags = append(tags, fmt.Sprintf("phone:%s", r.HashSensitiveData(phone)))
	}

	for _, match := range accountPattern.FindAllStringSubmatch(redacted, -1) {
		account := match[1]

		if preserveContext && len(account) > 4 {
			redacted = strings.ReplaceAll(redacted, account, maskKeepingEdges(account, 2))
		} else {
			redacted = strings.ReplaceAll(redacted, match[0], "[ACCOUNT_REDACTED]")
		}

		tags = append(tags, fmt.Sprintf("account:%s", r.HashSensitiveData(account)))
	}

	for _, card := range creditCardPattern.FindAllString(redacted, -1) {
		cleaned := cardSeparators.ReplaceAllString(card, "")
		if len(cleaned) != 16 {
			continue
		}

		replacement := "[CC_REDACTED]"
		if preserveContext {
			replacement = cleaned[:4] + strings.Repeat("*", 8) + cleaned[12:]
		}

		redacted = strings.ReplaceAll(redacted, card, replacement)
		tags = append(tags, fmt.Sprintf("cc:%s", r.HashSensitiveData(cleaned)))
	}

	return redacted, tags
}

// RedactHeaders masks PII in the raw header block while keeping the
// routing structure intact. Client IP headers are replaced outright.
func (r *Redactor) RedactHeaders(headers string) string {
	redacted, _ := r.RedactText(headers, true)

	lines := strings.Split(redacted, "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)

		for _, prefix := range ipHeaderPrefixes {
			if strings.HasPrefix(lower, prefix) {
				name, _, _ := strings.Cut(line, ":")
				lines[i] = name + ": [IP_REDACTED]"

				break
			}
		}
	}

	return strings.Join(lines, "\n")
}

// ExtractSafeSnippets returns up to three fully redacted text snippets
// for the classifier, preferring sentences with security-relevant
// keywords
func (r *Redactor) ExtractSafeSnippets(text string) []string {
	redacted, _ := r.RedactText(text, false)

	var relevant []string

	for _, sentence := range sentenceSplit.Split(redacted, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}

		if containsSecurityKeyword(sentence) {
			relevant = append(relevant, sentence)
		} else if len(relevant) < contextSentenceCount {
			relevant = append(relevant, sentence)
		}
	}

	var snippets []string

	current := ""

	for _, sentence := range relevant {
		if len(current)+len(sentence) < maxSnippetLength {
			current += sentence + ". "

			continue
		}

		if current != "" {
			snippets = append(snippets, strings.TrimSpace(current))
		}

		current = sentence + ". "
	}

	if current != "" {
		snippets = append(snippets, strings.TrimSpace(current))
	}

	return snippets[:min(len(snippets), maxSnippets)]
}

// maskKeepingEdges replaces the middle of a value with asterisks,
// keeping edge characters on each side
func maskKeepingEdges(value string, edge int) string {
	if len(value) <= 2*edge {
		return strings.Repeat("*", len(value))
	}

	return value[:edge] + strings.Repeat("*", len(value)-2*edge) + value[len(value)-edge:]
}

// containsSecurityKeyword reports whether the sentence mentions any
// security-relevant keyword
func containsSecurityKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)

	for _, keyword := range securityKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}
