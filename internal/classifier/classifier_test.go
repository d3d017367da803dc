package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/phishguard/internal/types"
)

const validResponse = `{
  "classification": "phishing",
  "risk_score": 87,
  "top_reasons": ["Dominio look-alike", "Solicitud de credenciales", "DMARC fallido"],
  "non_technical_summary": "Este mensaje intenta robar tus datos. No hagas clic en los enlaces.",
  "recommended_actions": ["No hagas clic", "Reporta el mensaje"],
  "evidence": {
    "header_findings": {"spf_dkim_dmarc": "fail", "reply_to_mismatch": true, "display_name_spoof": false},
    "url_findings": [{"url": "https://paypa1.com", "reason": "look-alike", "risk_level": "high"}],
    "nlp_signals": ["Solicitud de credenciales"]
  }
}`

func newTestClient(generate generateFunc) *GeminiClient {
	return &GeminiClient{
		logger:     zerolog.Nop(),
		model:      defaultModel,
		maxRetries: defaultMaxRetries,
		generate:   generate,
	}
}

func TestParseResponse_Valid(t *testing.T) {
	response, err := parseResponse(validResponse)

	require.NoError(t, err)
	assert.Equal(t, types.ClassificationPhishing, response.Classification)
	assert.Equal(t, 87, response.RiskScore)
	assert.Len(t, response.TopReasons, 3)
	assert.Equal(t, types.AuthStatusFail, response.Evidence.HeaderFindings.SPFDKIMDMARC)
}

func TestParseResponse_IgnoresSurroundingProse(t *testing.T) {
	wrapped := "Claro, aquí está el análisis:\n```json\n" + validResponse + "\n```\nEspero que ayude."

	response, err := parseResponse(wrapped)

	require.NoError(t, err)
	assert.Equal(t, types.ClassificationPhishing, response.Classification)
}

func TestParseResponse_Rejections(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "no json at all", text: "no puedo clasificar este mensaje"},
		{name: "malformed json", text: `{"classification": "phishing",`},
		{
			name: "missing required field",
			text: `{"classification": "phishing", "risk_score": 80, "top_reasons": [], "recommended_actions": [], "evidence": {}}`,
		},
		{
			name: "unknown classification literal",
			text: strings.Replace(validResponse, `"phishing"`, `"peligroso"`, 1),
		},
		{
			name: "score out of range",
			text: strings.Replace(validResponse, `"risk_score": 87`, `"risk_score": 140`, 1),
		},
		{
			name: "fractional score",
			text: strings.Replace(validResponse, `"risk_score": 87`, `"risk_score": 87.5`, 1),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response, err := parseResponse(tc.text)

			assert.Error(t, err)
			assert.Nil(t, response)
		})
	}
}

func TestParseResponse_TruncatesLists(t *testing.T) {
	text := strings.Replace(validResponse,
		`"recommended_actions": ["No hagas clic", "Reporta el mensaje"]`,
		`"recommended_actions": ["a", "b", "c", "d", "e"]`, 1)

	response, err := parseResponse(text)

	require.NoError(t, err)
	assert.Len(t, response.RecommendedActions, types.MaxRecommendedActions)
	require.NoError(t, response.Validate())
}

func TestClassify_Success(t *testing.T) {
	client := newTestClient(func(_ context.Context, _, _ string) (string, error) {
		return validResponse, nil
	})

	response, err := client.Classify(context.Background(), types.PromptData{LatencyBudget: 5 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, types.ClassificationPhishing, response.Classification)
	assert.GreaterOrEqual(t, response.LatencyMs, int64(0))
}

func TestClassify_RetriesOnceThenSucceeds(t *testing.T) {
	calls := 0

	client := newTestClient(func(_ context.Context, _, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}

		return validResponse, nil
	})

	response, err := client.Classify(context.Background(), types.PromptData{LatencyBudget: 5 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, types.ClassificationPhishing, response.Classification)
}

func TestClassify_AllAttemptsFail(t *testing.T) {
	calls := 0

	client := newTestClient(func(_ context.Context, _, _ string) (string, error) {
		calls++

		return "", errors.New("boom")
	})

	response, err := client.Classify(context.Background(), types.PromptData{LatencyBudget: 5 * time.Second})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, response)
	assert.Equal(t, 2, calls)
}

func TestClassify_InvalidPayloadCountsAsFailure(t *testing.T) {
	client := newTestClient(func(_ context.Context, _, _ string) (string, error) {
		return "texto sin json", nil
	})

	_, err := client.Classify(context.Background(), types.PromptData{LatencyBudget: 5 * time.Second})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClassify_BudgetExhausted(t *testing.T) {
	calls := 0

	client := newTestClient(func(_ context.Context, _, _ string) (string, error) {
		calls++

		return validResponse, nil
	})

	response, err := client.Classify(context.Background(), types.PromptData{LatencyBudget: 100 * time.Millisecond})

	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Nil(t, response)
	assert.Zero(t, calls)
}

func TestBuildUserPrompt(t *testing.T) {
	data := types.PromptData{
		HeadersRaw:       "From: a***e@example.com",
		TextBody:         "Verifica tu cuenta ahora",
		HTMLSnippets:     []string{"[EMAIL_REDACTED] debe actuar"},
		AttachmentsMeta:  []types.AttachmentMeta{{Filename: "factura.exe", Mime: "application/x-msdownload"}},
		HeuristicSummary: "URLs: 1 hallazgos, riesgo 40/100",
		AccountContext:   types.AccountContext{UserLocale: "es-ES", OwnedDomains: []string{"empresa.com"}},
		LatencyBudget:    2 * time.Second,
	}

	prompt := buildUserPrompt(data)

	assert.Contains(t, prompt, "HEADERS (redactados):")
	assert.Contains(t, prompt, "Verifica tu cuenta ahora")
	assert.Contains(t, prompt, "factura.exe (application/x-msdownload)")
	assert.Contains(t, prompt, "URLs: 1 hallazgos, riesgo 40/100")
	assert.Contains(t, prompt, "Budget de latencia: 2000ms")
	assert.Contains(t, prompt, "Locale: es-ES")
}

func TestFallback(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  types.Classification
	}{
		{name: "high score is phishing", score: 75, want: types.ClassificationPhishing},
		{name: "boundary sixty is phishing", score: 60, want: types.ClassificationPhishing},
		{name: "mid score is suspicious", score: 45, want: types.ClassificationSuspicious},
		{name: "boundary forty is suspicious", score: 40, want: types.ClassificationSuspicious},
		{name: "low score is safe", score: 10, want: types.ClassificationSafe},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response := Fallback(tc.score)

			assert.Equal(t, tc.want, response.Classification)
			assert.Equal(t, int(tc.score), response.RiskScore)
			require.NoError(t, response.Validate())
			assert.NotEmpty(t, response.NonTechnicalSummary)
			assert.NotEmpty(t, response.RecommendedActions)
		})
	}
}
