package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theopenlane/phishguard/internal/types"
)

func verdict(c types.Classification, score int, reasons ...string) *types.ClassificationResponse {
	return &types.ClassificationResponse{
		Classification:      c,
		RiskScore:           score,
		TopReasons:          reasons,
		NonTechnicalSummary: "resumen",
		RecommendedActions:  []string{"acción"},
	}
}

func dmarcFailSignals() types.SignalBag {
	return types.SignalBag{
		HeaderFindings: types.HeaderFindings{SPFDKIMDMARC: types.AuthStatusFail},
	}
}

func TestApplyPolicies_EscalatesSafeOnCriticalSignal(t *testing.T) {
	features := types.HeuristicFeatures{Signals: dmarcFailSignals()}

	response := ApplyPolicies(verdict(types.ClassificationSafe, 30, "parece legítimo"), features)

	assert.Equal(t, types.ClassificationSuspicious, response.Classification)
	assert.GreaterOrEqual(t, response.RiskScore, escalatedSuspiciousScore)
	assert.Contains(t, response.TopReasons[0], "Señales críticas: DMARC failure")
}

func TestApplyPolicies_EscalatesSuspiciousOnTwoCriticalSignals(t *testing.T) {
	signals := dmarcFailSignals()
	signals.URLFindings = []types.URLFinding{
		{URL: "https://paypa1.com", Reason: "look-alike", RiskLevel: types.RiskLevelHigh},
	}

	features := types.HeuristicFeatures{Signals: signals}

	response := ApplyPolicies(verdict(types.ClassificationSuspicious, 50), features)

	assert.Equal(t, types.ClassificationPhishing, response.Classification)
	assert.GreaterOrEqual(t, response.RiskScore, escalatedPhishingScore)
}

func TestApplyPolicies_SingleCriticalSignalDoesNotReachPhishing(t *testing.T) {
	features := types.HeuristicFeatures{Signals: dmarcFailSignals()}

	response := ApplyPolicies(verdict(types.ClassificationSuspicious, 50), features)

	assert.Equal(t, types.ClassificationSuspicious, response.Classification)
	assert.Equal(t, 50, response.RiskScore)
}

func TestApplyPolicies_CredentialFlagIsCritical(t *testing.T) {
	features := types.HeuristicFeatures{
		Signals: types.SignalBag{
			HeaderFindings: types.DefaultHeaderFindings(),
			NLPRaw:         types.NLPSignals{CredentialRequest: true},
		},
	}

	response := ApplyPolicies(verdict(types.ClassificationSafe, 10), features)

	assert.Equal(t, types.ClassificationSuspicious, response.Classification)
	assert.Contains(t, response.TopReasons[0], "Credential request")
}

func TestApplyPolicies_NeverDowngrades(t *testing.T) {
	features := types.HeuristicFeatures{
		Signals: types.SignalBag{HeaderFindings: types.DefaultHeaderFindings()},
	}

	response := ApplyPolicies(verdict(types.ClassificationPhishing, 95), features)

	assert.Equal(t, types.ClassificationPhishing, response.Classification)
	assert.Equal(t, 95, response.RiskScore)
}

func TestApplyPolicies_Consistency(t *testing.T) {
	noSignals := types.HeuristicFeatures{
		Signals: types.SignalBag{HeaderFindings: types.DefaultHeaderFindings()},
	}

	cases := []struct {
		name      string
		input     *types.ClassificationResponse
		wantClass types.Classification
		wantScore int
	}{
		{
			name:      "phishing score raised to floor",
			input:     verdict(types.ClassificationPhishing, 30),
			wantClass: types.ClassificationPhishing,
			wantScore: phishingScoreFloor,
		},
		{
			name:      "suspicious score raised to floor",
			input:     verdict(types.ClassificationSuspicious, 10),
			wantClass: types.ClassificationSuspicious,
			wantScore: suspiciousScoreFloor,
		},
		{
			name:      "safe with high score reclassified",
			input:     verdict(types.ClassificationSafe, 55),
			wantClass: types.ClassificationSuspicious,
			wantScore: 55,
		},
		{
			name:      "consistent verdict untouched",
			input:     verdict(types.ClassificationSafe, 12),
			wantClass: types.ClassificationSafe,
			wantScore: 12,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response := ApplyPolicies(tc.input, noSignals)

			assert.Equal(t, tc.wantClass, response.Classification)
			assert.Equal(t, tc.wantScore, response.RiskScore)
		})
	}
}

func TestApplyPolicies_ReasonListStaysBounded(t *testing.T) {
	features := types.HeuristicFeatures{Signals: dmarcFailSignals()}

	response := ApplyPolicies(
		verdict(types.ClassificationSafe, 30, "razón uno", "razón dos", "razón tres"),
		features,
	)

	assert.Len(t, response.TopReasons, types.MaxTopReasons)
	assert.Contains(t, response.TopReasons[0], "Señales críticas")
}
