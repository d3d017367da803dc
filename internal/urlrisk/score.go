package urlrisk

import "github.com/theopenlane/phishguard/internal/types"

// Score weight constants
const (
	weightHighFinding   = 30
	weightMediumFinding = 15
	weightLowFinding    = 5
	weightPerFinding    = 5
	maxFindingBonus     = 20
	maxScore            = 100
)

// Score computes the URL risk score (0-100) from the findings. Multiple
// suspicious URLs earn a capped bonus on top of the per-finding weights.
func Score(findings []types.URLFinding) float64 {
	if len(findings) == 0 {
		return 0
	}

	score := 0.0

	for _, finding := range findings {
		switch finding.RiskLevel {
		case types.RiskLevelHigh:
			score += weightHighFinding
		case types.RiskLevelMedium:
			score += weightMediumFinding
		default:
			score += weightLowFinding
		}
	}

	if len(findings) > 1 {
		score += min(float64(len(findings)*weightPerFinding), maxFindingBonus)
	}

	return min(score, maxScore)
}
