package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theopenlane/phishguard/internal/types"
)

// maxSummaryChars bounds the summary taken from the model verbatim
const maxSummaryChars = 200

// requiredResponseFields must all be present in the model's JSON
var requiredResponseFields = []string{
	"classification",
	"risk_score",
	"top_reasons",
	"non_technical_summary",
	"recommended_actions",
	"evidence",
}

// parseResponse extracts and validates the JSON verdict from the raw
// model output. Anything outside the outermost braces is discarded;
// missing fields, unknown classification literals, or out-of-range
// scores reject the response entirely.
func parseResponse(text string) (*types.ClassificationResponse, error) {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	payload := []byte(text[start : end+1])

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("invalid response json: %w", err)
	}

	for _, field := range requiredResponseFields {
		if _, ok := fields[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	var response types.ClassificationResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("invalid response shape: %w", err)
	}

	if !response.Classification.Valid() {
		return nil, types.ErrInvalidClassification
	}

	if response.RiskScore < 0 || response.RiskScore > types.MaxRiskScore {
		return nil, types.ErrInvalidRiskScore
	}

	response.TopReasons = response.TopReasons[:min(len(response.TopReasons), types.MaxTopReasons)]
	response.RecommendedActions = response.RecommendedActions[:min(len(response.RecommendedActions), types.MaxRecommendedActions)]
	response.NonTechnicalSummary = truncate(response.NonTechnicalSummary, maxSummaryChars)

	return &response, nil
}
