package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/phishguard/internal/classifier"
	"github.com/theopenlane/phishguard/internal/types"
	"github.com/theopenlane/phishguard/internal/urlrisk"
)

// stubClassifier returns a fixed verdict, error, or panic and records
// the prompt data it was handed
type stubClassifier struct {
	response *types.ClassificationResponse
	err      error
	panics   bool
	gotData  types.PromptData
}

func (s *stubClassifier) Classify(_ context.Context, data types.PromptData) (*types.ClassificationResponse, error) {
	s.gotData = data

	if s.panics {
		panic("stub classifier exploded")
	}

	if s.err != nil {
		return nil, s.err
	}

	response := *s.response

	return &response, nil
}

func safeVerdict(score int) *types.ClassificationResponse {
	return &types.ClassificationResponse{
		Classification:      types.ClassificationSafe,
		RiskScore:           score,
		TopReasons:          []string{"Sin señales"},
		NonTechnicalSummary: "El mensaje parece legítimo.",
		RecommendedActions:  []string{"Ninguna acción necesaria"},
	}
}

// lexicalOnlyService avoids network checks so tests stay deterministic
func lexicalOnlyService(cls classifier.Classifier) *Service {
	return NewService(cls,
		WithURLAnalyzer(urlrisk.NewAnalyzer(urlrisk.WithURLBudget(time.Nanosecond))),
	)
}

func TestClassifyEmail_HappyPath(t *testing.T) {
	stub := &stubClassifier{response: safeVerdict(10)}
	service := lexicalOnlyService(stub)

	response := service.ClassifyEmail(context.Background(), types.ClassificationRequest{
		TextBody: "Hola equipo, nos vemos en la oficina el lunes",
	})

	require.NotNil(t, response)
	assert.Equal(t, types.ClassificationSafe, response.Classification)
	assert.GreaterOrEqual(t, response.LatencyMs, int64(0))
	require.NoError(t, response.Validate())
}

func TestClassifyEmail_ClassifierBudgetHonorsFloor(t *testing.T) {
	stub := &stubClassifier{response: safeVerdict(10)}
	service := lexicalOnlyService(stub)

	service.ClassifyEmail(context.Background(), types.ClassificationRequest{TextBody: "hola"})

	assert.GreaterOrEqual(t, stub.gotData.LatencyBudget, defaultMinClassifierBudget)
}

func TestClassifyEmail_FallbackOnClassifierError(t *testing.T) {
	stub := &stubClassifier{err: classifier.ErrUnavailable}
	service := lexicalOnlyService(stub)

	response := service.ClassifyEmail(context.Background(), types.ClassificationRequest{
		TextBody: "Hola equipo, nos vemos en la oficina el lunes",
	})

	require.NotNil(t, response)
	assert.Equal(t, types.ClassificationSafe, response.Classification)
	assert.Contains(t, response.TopReasons, "LLM no disponible")
	require.NoError(t, response.Validate())
}

func TestClassifyEmail_PolicyEscalatesSafeVerdict(t *testing.T) {
	stub := &stubClassifier{response: safeVerdict(30)}
	service := lexicalOnlyService(stub)

	response := service.ClassifyEmail(context.Background(), types.ClassificationRequest{
		TextBody: "Debe verificar cuenta y hacer clic aquí cuanto antes",
	})

	require.NotNil(t, response)
	assert.Equal(t, types.ClassificationSuspicious, response.Classification)
	assert.GreaterOrEqual(t, response.RiskScore, escalatedSuspiciousScore)
	assert.Contains(t, response.TopReasons[0], "Señales críticas")
	require.NoError(t, response.Validate())
}

func TestClassifyEmail_PanicProducesConservativeResponse(t *testing.T) {
	stub := &stubClassifier{panics: true}
	service := lexicalOnlyService(stub)

	response := service.ClassifyEmail(context.Background(), types.ClassificationRequest{TextBody: "hola"})

	require.NotNil(t, response)
	assert.Equal(t, types.ClassificationSuspicious, response.Classification)
	assert.Equal(t, errorResponseScore, response.RiskScore)
	assert.Equal(t, "Error en el análisis", response.TopReasons[0])
	require.NoError(t, response.Validate())
}

// recordingNotifier signals on a channel when a verdict arrives
type recordingNotifier struct {
	verdicts chan *types.ClassificationResponse
}

func (r *recordingNotifier) NotifyVerdict(_ context.Context, response *types.ClassificationResponse) error {
	r.verdicts <- response
	return nil
}

func TestClassifyEmail_NotifiesOnPhishingVerdict(t *testing.T) {
	notifier := &recordingNotifier{verdicts: make(chan *types.ClassificationResponse, 1)}

	stub := &stubClassifier{response: &types.ClassificationResponse{
		Classification:      types.ClassificationPhishing,
		RiskScore:           90,
		TopReasons:          []string{"Suplantación de marca"},
		NonTechnicalSummary: "Este correo es fraudulento.",
		RecommendedActions:  []string{"Eliminar el mensaje"},
	}}

	service := NewService(stub,
		WithURLAnalyzer(urlrisk.NewAnalyzer(urlrisk.WithURLBudget(time.Nanosecond))),
		WithNotifier(notifier),
	)

	service.ClassifyEmail(context.Background(), types.ClassificationRequest{TextBody: "hola"})

	select {
	case got := <-notifier.verdicts:
		assert.Equal(t, types.ClassificationPhishing, got.Classification)
		assert.Equal(t, 90, got.RiskScore)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a phishing alert to be dispatched")
	}
}

func TestClassifyEmail_NoAlertForSafeVerdict(t *testing.T) {
	notifier := &recordingNotifier{verdicts: make(chan *types.ClassificationResponse, 1)}

	service := NewService(&stubClassifier{response: safeVerdict(10)},
		WithURLAnalyzer(urlrisk.NewAnalyzer(urlrisk.WithURLBudget(time.Nanosecond))),
		WithNotifier(notifier),
	)

	service.ClassifyEmail(context.Background(), types.ClassificationRequest{
		TextBody: "Hola equipo, nos vemos en la oficina el lunes",
	})

	select {
	case <-notifier.verdicts:
		t.Fatal("no alert expected for a safe verdict")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunHeuristics_PanickingBranchDegrades(t *testing.T) {
	service := lexicalOnlyService(&stubClassifier{response: safeVerdict(0)})
	// a nil content analyzer panics inside its branch on first use
	service.textAnalyzer = nil

	features := service.runHeuristics(context.Background(), types.ClassificationRequest{
		TextBody: "Debe verificar cuenta y hacer clic aquí",
		AttachmentsMeta: []types.AttachmentMeta{
			{Filename: "factura.exe", Mime: "application/pdf", Size: 1024},
		},
	}, zerolog.Nop())

	assert.Zero(t, features.NLPScore)
	assert.Empty(t, features.Signals.NLPDescriptions)
	assert.Equal(t, 25.0, features.AttachmentScore)
	assert.InDelta(t, 25.0*weightAttachment, features.TotalScore, 1e-9)
}

func TestClassifyEmail_SurvivesPanickingBranch(t *testing.T) {
	service := lexicalOnlyService(&stubClassifier{response: safeVerdict(10)})
	service.textAnalyzer = nil

	response := service.ClassifyEmail(context.Background(), types.ClassificationRequest{
		TextBody: "Hola equipo, nos vemos en la oficina el lunes",
	})

	require.NotNil(t, response)
	require.NoError(t, response.Validate())
	assert.Equal(t, types.ClassificationSafe, response.Classification)
}

func TestRunHeuristics_FusionWeights(t *testing.T) {
	service := lexicalOnlyService(&stubClassifier{response: safeVerdict(0)})

	features := service.runHeuristics(context.Background(), types.ClassificationRequest{
		AttachmentsMeta: []types.AttachmentMeta{
			{Filename: "factura.exe", Mime: "application/pdf", Size: 2 * 1024 * 1024},
		},
	}, zerolog.Nop())

	assert.Equal(t, 25.0, features.AttachmentScore)
	assert.Zero(t, features.HeaderScore)
	assert.Zero(t, features.URLScore)
	assert.Zero(t, features.NLPScore)
	assert.InDelta(t, 25.0*weightAttachment, features.TotalScore, 1e-9)
}

func TestHeuristicSummary(t *testing.T) {
	cases := []struct {
		name     string
		features types.HeuristicFeatures
		want     string
	}{
		{
			name: "no significant signals",
			want: "Sin señales significativas",
		},
		{
			name: "all components visible",
			features: types.HeuristicFeatures{
				HeaderScore:     35,
				URLScore:        45,
				NLPScore:        30,
				AttachmentScore: 25,
				Signals: types.SignalBag{
					URLFindings:     []types.URLFinding{{URL: "https://paypa1.com"}},
					NLPDescriptions: []string{"Solicitud de credenciales", "Urgencia detectada (score: 0.50)"},
				},
			},
			want: "Headers: riesgo 35/100; URLs: 1 sospechosas, riesgo 45/100; NLP: 2 señales, riesgo 30/100; Adjuntos: riesgo 25/100",
		},
		{
			name: "components at threshold stay hidden",
			features: types.HeuristicFeatures{
				HeaderScore:     20,
				URLScore:        20,
				NLPScore:        20,
				AttachmentScore: 10,
			},
			want: "Sin señales significativas",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, heuristicSummary(tc.features))
		})
	}
}
