package pipeline

import (
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// Policy score constants
const (
	// escalatedSuspiciousScore is the floor forced when a safe verdict is
	// escalated over critical signals
	escalatedSuspiciousScore = 45
	// escalatedPhishingScore is the floor forced when a suspicious
	// verdict is escalated over multiple critical signals
	escalatedPhishingScore = 65
	// phishingScoreFloor is the minimum score consistent with phishing
	phishingScoreFloor = 60
	// suspiciousScoreFloor is the minimum score consistent with sospechoso
	suspiciousScoreFloor = 40
	// minCriticalForPhishing is the distinct critical signal count needed
	// to escalate sospechoso to phishing
	minCriticalForPhishing = 2
	// maxCriticalInReason caps the signals named in the prepended reason
	maxCriticalInReason = 2
)

// ApplyPolicies enforces the safety overrides on the classifier's
// verdict. Escalation is one-directional: the policy raises
// classifications and scores over critical heuristic signals but never
// downgrades. Consistency between score and classification is enforced
// last. This is the only stage allowed to mutate a response.
func ApplyPolicies(response *types.ClassificationResponse, features types.HeuristicFeatures) *types.ClassificationResponse {
	critical := collectCriticalSignals(features.Signals)

	switch {
	case len(critical) > 0 && response.Classification == types.ClassificationSafe:
		response.Classification = types.ClassificationSuspicious
		response.RiskScore = max(response.RiskScore, escalatedSuspiciousScore)

		reason := "Señales críticas: " + strings.Join(critical[:min(len(critical), maxCriticalInReason)], ", ")
		response.TopReasons = append([]string{reason}, response.TopReasons...)

		if len(response.TopReasons) > types.MaxTopReasons {
			response.TopReasons = response.TopReasons[:types.MaxTopReasons]
		}
	case len(critical) >= minCriticalForPhishing && response.Classification == types.ClassificationSuspicious:
		response.Classification = types.ClassificationPhishing
		response.RiskScore = max(response.RiskScore, escalatedPhishingScore)
	}

	switch {
	case response.Classification == types.ClassificationPhishing && response.RiskScore < phishingScoreFloor:
		response.RiskScore = phishingScoreFloor
	case response.Classification == types.ClassificationSuspicious && response.RiskScore < suspiciousScoreFloor:
		response.RiskScore = suspiciousScoreFloor
	case response.Classification == types.ClassificationSafe && response.RiskScore >= suspiciousScoreFloor:
		response.Classification = types.ClassificationSuspicious
	}

	return response
}

// collectCriticalSignals gathers the heuristic conditions that may not
// be under-called regardless of the classifier's verdict
func collectCriticalSignals(signals types.SignalBag) []string {
	var critical []string

	if signals.HeaderFindings.SPFDKIMDMARC == types.AuthStatusFail {
		critical = append(critical, "DMARC failure")
	}

	for _, finding := range signals.URLFindings {
		if finding.RiskLevel == types.RiskLevelHigh {
			critical = append(critical, "High-risk URLs")

			break
		}
	}

	if signals.NLPRaw.CredentialRequest {
		critical = append(critical, "Credential request")
	}

	return critical
}
