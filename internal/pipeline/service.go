// Package pipeline orchestrates the phishing classification flow:
// PII redaction, concurrent heuristic analysis, weighted score fusion,
// the external classifier call under a latency budget, and the final
// security policy overrides.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theopenlane/phishguard/internal/classifier"
	"github.com/theopenlane/phishguard/internal/emailauth"
	"github.com/theopenlane/phishguard/internal/redact"
	"github.com/theopenlane/phishguard/internal/textsig"
	"github.com/theopenlane/phishguard/internal/types"
	"github.com/theopenlane/phishguard/internal/urlrisk"
)

const (
	// defaultTargetLatency is the end-to-end SLO for a classification,
	// including the external classifier call
	defaultTargetLatency = 35 * time.Second
	// defaultMinClassifierBudget is the smallest budget ever handed to
	// the classifier regardless of heuristic overrun
	defaultMinClassifierBudget = 30 * time.Second
	// errorResponseScore is the conservative score of the fixed error
	// response
	errorResponseScore = 50
	// notifyTimeout bounds the async alert dispatch
	notifyTimeout = 10 * time.Second
)

// Notifier receives final phishing verdicts for out-of-band alerting
type Notifier interface {
	NotifyVerdict(ctx context.Context, response *types.ClassificationResponse) error
}

// Service runs the end-to-end classification pipeline
type Service struct {
	logger              zerolog.Logger
	redactor            *redact.Redactor
	headerAnalyzer      *emailauth.Analyzer
	urlAnalyzer         *urlrisk.Analyzer
	textAnalyzer        *textsig.Analyzer
	classifier          classifier.Classifier
	notifier            Notifier
	targetLatency       time.Duration
	minClassifierBudget time.Duration
}

// ServiceOption configures the Service
type ServiceOption func(*Service)

// WithLogger sets the pipeline logger
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHeaderAnalyzer overrides the header authenticity analyzer
func WithHeaderAnalyzer(analyzer *emailauth.Analyzer) ServiceOption {
	return func(s *Service) {
		if analyzer != nil {
			s.headerAnalyzer = analyzer
		}
	}
}

// WithURLAnalyzer overrides the URL risk analyzer
func WithURLAnalyzer(analyzer *urlrisk.Analyzer) ServiceOption {
	return func(s *Service) {
		if analyzer != nil {
			s.urlAnalyzer = analyzer
		}
	}
}

// WithTextAnalyzer overrides the content signal analyzer
func WithTextAnalyzer(analyzer *textsig.Analyzer) ServiceOption {
	return func(s *Service) {
		if analyzer != nil {
			s.textAnalyzer = analyzer
		}
	}
}

// WithNotifier enables out-of-band alerts for phishing verdicts
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithTargetLatency overrides the end-to-end latency target
func WithTargetLatency(target time.Duration) ServiceOption {
	return func(s *Service) {
		if target > 0 {
			s.targetLatency = target
		}
	}
}

// WithMinClassifierBudget overrides the classifier budget floor
func WithMinClassifierBudget(budget time.Duration) ServiceOption {
	return func(s *Service) {
		if budget > 0 {
			s.minClassifierBudget = budget
		}
	}
}

// NewService creates the classification pipeline around the given
// classifier
func NewService(cls classifier.Classifier, opts ...ServiceOption) *Service {
	s := &Service{
		logger:              zerolog.Nop(),
		redactor:            redact.NewRedactor(),
		headerAnalyzer:      emailauth.NewAnalyzer(),
		urlAnalyzer:         urlrisk.NewAnalyzer(),
		textAnalyzer:        textsig.NewAnalyzer(),
		classifier:          cls,
		targetLatency:       defaultTargetLatency,
		minClassifierBudget: defaultMinClassifierBudget,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ClassifyEmail runs the full pipeline for one request. It never
// returns an error: any internal failure degrades to a conservative
// fixed response so the caller always receives a valid verdict.
func (s *Service) ClassifyEmail(ctx context.Context, req types.ClassificationRequest) (response *types.ClassificationResponse) {
	started := time.Now()

	logger := s.logger.With().Str("request_id", uuid.NewString()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Dur("elapsed", time.Since(started)).Msg("classification pipeline panicked")

			response = errorResponse(time.Since(started))
		}
	}()

	logger.Info().
		Bool("has_html", req.RawHTML != "").
		Bool("has_text", req.TextBody != "").
		Bool("has_headers", req.RawHeaders != "").
		Int("attachments_count", len(req.AttachmentsMeta)).
		Msg("starting email classification")

	features := s.runHeuristics(ctx, req, logger)

	logger.Info().
		Dur("elapsed", time.Since(started)).
		Float64("total_score", features.TotalScore).
		Msg("heuristic pipeline completed")

	promptData := s.buildPromptData(req, features)
	promptData.LatencyBudget = max(s.targetLatency-time.Since(started), s.minClassifierBudget)

	verdict, err := s.classifier.Classify(ctx, promptData)
	if err != nil {
		logger.Warn().Err(err).Msg("classifier failed, using heuristic fallback")

		verdict = classifier.Fallback(features.TotalScore)
	}

	final := ApplyPolicies(verdict, features)
	final.LatencyMs = time.Since(started).Milliseconds()

	s.dispatchAlert(logger, final)

	logger.Info().
		Str("classification", string(final.Classification)).
		Int("risk_score", final.RiskScore).
		Int64("latency_ms", final.LatencyMs).
		Bool("within_slo", final.LatencyMs <= s.targetLatency.Milliseconds()).
		Msg("email classification completed")

	return final
}

// dispatchAlert notifies asynchronously on phishing verdicts. The alert
// runs on a detached context so it survives the request returning.
func (s *Service) dispatchAlert(logger zerolog.Logger, response *types.ClassificationResponse) {
	if s.notifier == nil || response.Classification != types.ClassificationPhishing {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyVerdict(ctx, response); err != nil {
			logger.Warn().Err(err).Msg("phishing alert notification failed")
		}
	}()
}

// buildPromptData assembles the redacted evidence bundle for the
// classifier
func (s *Service) buildPromptData(req types.ClassificationRequest, features types.HeuristicFeatures) types.PromptData {
	return types.PromptData{
		HeadersRaw:       s.redactor.RedactHeaders(req.RawHeaders),
		TextBody:         req.TextBody,
		HTMLSnippets:     s.redactor.ExtractSafeSnippets(req.TextBody),
		AttachmentsMeta:  req.AttachmentsMeta,
		URLMetadata:      features.Signals.URLMetadata,
		HeuristicSummary: heuristicSummary(features),
		AccountContext:   req.AccountContext,
	}
}

// errorResponse is the fixed conservative verdict for a total pipeline
// failure
func errorResponse(elapsed time.Duration) *types.ClassificationResponse {
	return &types.ClassificationResponse{
		Classification: types.ClassificationSuspicious,
		RiskScore:      errorResponseScore,
		TopReasons: []string{
			"Error en el análisis",
			"Clasificación conservadora",
			"Recomendar precaución",
		},
		NonTechnicalSummary: "No pudimos analizar completamente este mensaje. Por precaución, recomendamos verificar su legitimidad.",
		RecommendedActions: []string{
			"Verificar remitente por canal oficial",
			"No hacer clic en enlaces",
			"Contactar soporte si es urgente",
		},
		Evidence: types.Evidence{
			HeaderFindings: types.DefaultHeaderFindings(),
			URLFindings:    []types.URLFinding{},
			NLPSignals:     []string{"Error de sistema"},
		},
		LatencyMs: elapsed.Milliseconds(),
	}
}
