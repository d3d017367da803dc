package textsig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/phishguard/internal/types"
)

func TestAnalyze_EmptyContent(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("")

	assert.Equal(t, types.NLPSignals{}, signals)
	assert.Empty(t, descriptions)
}

func TestAnalyze_BenignContent(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("Hola equipo, adjunto el acta de la charla de ayer. Saludos")

	assert.Zero(t, signals.UrgencyScore)
	assert.False(t, signals.CredentialRequest)
	assert.False(t, signals.PaymentRequest)
	assert.False(t, signals.LanguageMixing)
	assert.Empty(t, signals.BrandMentions)
	assert.Empty(t, signals.ThreatIndicators)
	assert.Empty(t, descriptions)
}

func TestAnalyze_Urgency(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("URGENTE: su cuenta expira hoy")

	assert.Greater(t, signals.UrgencyScore, urgencyReportThreshold)
	assert.Contains(t, descriptions[0], "Urgencia detectada")
}

func TestAnalyze_CredentialRequest(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{
			name: "direct spanish pattern",
			text: "debe verificar cuenta antes del viernes",
		},
		{
			name: "direct english pattern",
			text: "please enter your password on the portal",
		},
		{
			name: "credential word paired with action word",
			text: "verify this message and provide it back",
		},
	}

	analyzer := NewAnalyzer()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signals, descriptions := analyzer.Analyze(tc.text)

			assert.True(t, signals.CredentialRequest)
			assert.Contains(t, descriptions, "Solicitud de credenciales")
		})
	}
}

func TestAnalyze_PaymentRequest(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("tiene un pago pendiente de su factura")

	assert.True(t, signals.PaymentRequest)
	assert.Contains(t, descriptions, "Solicitud de información financiera")
}

func TestAnalyze_LexicalErrors(t *testing.T) {
	analyzer := NewAnalyzer()

	// broken verb form, repeated punctuation, shouting, tight comma
	text := "YOU WAS selected!!! Please,open THIS OFFER ENDS TODAY FAST"

	signals, descriptions := analyzer.Analyze(text)

	assert.Greater(t, signals.LexicalErrors, lexicalErrorReportThreshold)
	assert.Contains(t, descriptions, "Errores léxicos (4)")
}

func TestAnalyze_ShoutingCheckedBeforeNormalization(t *testing.T) {
	analyzer := NewAnalyzer()

	shouting, _ := analyzer.Analyze("CONFIRM YOUR ACCOUNT DETAILS IMMEDIATELY TODAY")
	calm, _ := analyzer.Analyze("confirm your account details immediately today")

	assert.Greater(t, shouting.LexicalErrors, calm.LexicalErrors)
}

func TestAnalyze_LanguageMixing(t *testing.T) {
	analyzer := NewAnalyzer()

	text := "Estimado cliente, el acceso de la cuenta fue limitado. " +
		"Please update your account information and security details, thank you."

	signals, descriptions := analyzer.Analyze(text)

	assert.True(t, signals.LanguageMixing)
	assert.Contains(t, descriptions, "Mezcla de idiomas detectada")
}

func TestAnalyze_BrandMentions(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("Su suscripción de PayPal y Netflix fue renovada")

	assert.Equal(t, []string{"paypal", "netflix"}, signals.BrandMentions)
	assert.Contains(t, descriptions, "Marcas mencionadas: paypal, netflix")
}

func TestAnalyze_ThreatIndicators(t *testing.T) {
	analyzer := NewAnalyzer()

	signals, descriptions := analyzer.Analyze("Su cuenta suspendida por actividad sospechosa")

	require.Len(t, signals.ThreatIndicators, 2)
	assert.Contains(t, signals.ThreatIndicators, "cuenta suspendida")
	assert.Contains(t, signals.ThreatIndicators, "actividad sospechosa")
	assert.Contains(t, descriptions, "Indicadores de amenaza detectados")
}

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		signals types.NLPSignals
		want    float64
	}{
		{
			name:    "zero signals",
			signals: types.NLPSignals{},
			want:    0,
		},
		{
			name:    "credential request alone",
			signals: types.NLPSignals{CredentialRequest: true},
			want:    30,
		},
		{
			name:    "payment request alone",
			signals: types.NLPSignals{PaymentRequest: true},
			want:    25,
		},
		{
			name:    "lexical errors capped",
			signals: types.NLPSignals{LexicalErrors: 10},
			want:    15,
		},
		{
			name: "threat indicators capped",
			signals: types.NLPSignals{
				ThreatIndicators: []string{"a", "b", "c", "d"},
			},
			want: 20,
		},
		{
			name: "everything caps at 100",
			signals: types.NLPSignals{
				UrgencyScore:      1.0,
				CredentialRequest: true,
				PaymentRequest:    true,
				LexicalErrors:     10,
				LanguageMixing:    true,
				BrandMentions:     []string{"paypal", "netflix"},
				ThreatIndicators:  []string{"cuenta suspendida"},
			},
			want: 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.signals))
		})
	}
}
