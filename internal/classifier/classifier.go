// Package classifier produces the final email verdict from the fused
// heuristic features, delegating to an external LLM and falling back
// to a heuristic-only verdict when the LLM cannot answer in budget.
package classifier

import (
	"context"

	"github.com/theopenlane/phishguard/internal/types"
)

// Classifier turns prompt data into a validated classification
type Classifier interface {
	Classify(ctx context.Context, data types.PromptData) (*types.ClassificationResponse, error)
}

// Fallback score thresholds
const (
	// fallbackPhishingScore is the heuristic score at or above which the
	// fallback verdict is phishing
	fallbackPhishingScore = 60
	// fallbackSuspiciousScore is the heuristic score at or above which
	// the fallback verdict is sospechoso
	fallbackSuspiciousScore = 40
)

// Fallback builds the heuristic-only verdict used when the external
// classifier is unavailable or out of budget
func Fallback(riskScore float64) *types.ClassificationResponse {
	var (
		classification types.Classification
		summary        string
		actions        []string
	)

	switch {
	case riskScore >= fallbackPhishingScore:
		classification = types.ClassificationPhishing
		summary = "Se detectaron múltiples señales de riesgo en este mensaje. Recomendamos precaución."
		actions = []string{"No hagas clic en enlaces", "No proporciones información personal"}
	case riskScore >= fallbackSuspiciousScore:
		classification = types.ClassificationSuspicious
		summary = "Este mensaje presenta algunas características sospechosas. Verifica antes de actuar."
		actions = []string{"Verifica el remitente por canal oficial", "Ten precaución con los enlaces"}
	default:
		classification = types.ClassificationSafe
		summary = "No se detectaron señales significativas de riesgo en este mensaje."
		actions = []string{"El mensaje parece legítimo", "Mantén precauciones generales"}
	}

	return &types.ClassificationResponse{
		Classification:      classification,
		RiskScore:           int(riskScore),
		TopReasons:          []string{"Análisis heurístico", "LLM no disponible", "Clasificación conservadora"},
		NonTechnicalSummary: summary,
		RecommendedActions:  actions,
		Evidence: types.Evidence{
			HeaderFindings: types.DefaultHeaderFindings(),
			URLFindings:    []types.URLFinding{},
			NLPSignals:     []string{"Análisis fallback"},
		},
	}
}
