package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/theopenlane/phishguard/internal/attachment"
	"github.com/theopenlane/phishguard/internal/textsig"
	"github.com/theopenlane/phishguard/internal/types"
	"github.com/theopenlane/phishguard/internal/urlrisk"
)

// Fusion weight constants: each analyzer's 0-100 score contributes a
// fixed share of the heuristic total
const (
	weightHeader     = 0.30
	weightURL        = 0.40
	weightNLP        = 0.25
	weightAttachment = 0.05

	// summaryVisibilityThreshold is the score a component must exceed to
	// appear in the heuristic summary
	summaryVisibilityThreshold = 20
	// attachmentVisibilityThreshold is the lower bar for attachments
	attachmentVisibilityThreshold = 10
)

// headerOutcome carries one fused branch result
type headerOutcome struct {
	findings types.HeaderFindings
	details  types.HeaderDetails
	score    float64
}

type urlOutcome struct {
	findings []types.URLFinding
	metadata []types.URLMetadata
	score    float64
}

type nlpOutcome struct {
	signals      types.NLPSignals
	descriptions []string
	score        float64
}

// runHeuristics redacts the request content and fans out to the four
// analyzers concurrently. A panicking branch degrades to its default
// contribution and never cancels or blocks its siblings.
func (s *Service) runHeuristics(ctx context.Context, req types.ClassificationRequest, logger zerolog.Logger) types.HeuristicFeatures {
	redactedHeaders := s.redactor.RedactHeaders(req.RawHeaders)
	redactedText, redactionTags := s.redactor.RedactText(req.TextBody, true)

	logger.Debug().Int("text_redactions", len(redactionTags)).Msg("pii redaction completed")

	var (
		header          = headerOutcome{findings: types.DefaultHeaderFindings()}
		urls            urlOutcome
		nlp             nlpOutcome
		attachmentScore float64
		wg              sync.WaitGroup
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		defer recoverBranch(logger, "header analysis")

		findings, details := s.headerAnalyzer.Analyze(redactedHeaders)
		header = headerOutcome{
			findings: findings,
			details:  details,
			score:    s.headerAnalyzer.Score(findings),
		}
	}()

	go func() {
		defer wg.Done()
		defer recoverBranch(logger, "url analysis")

		findings, metadata := s.urlAnalyzer.Analyze(ctx, req.RawHTML, redactedText)
		urls = urlOutcome{
			findings: findings,
			metadata: metadata,
			score:    urlrisk.Score(findings),
		}
	}()

	go func() {
		defer wg.Done()
		defer recoverBranch(logger, "content analysis")

		signals, descriptions := s.textAnalyzer.Analyze(redactedText)
		nlp = nlpOutcome{
			signals:      signals,
			descriptions: descriptions,
			score:        textsig.Score(signals),
		}
	}()

	go func() {
		defer wg.Done()
		defer recoverBranch(logger, "attachment analysis")

		attachmentScore = attachment.Score(req.AttachmentsMeta)
	}()

	wg.Wait()

	total := header.score*weightHeader +
		urls.score*weightURL +
		nlp.score*weightNLP +
		attachmentScore*weightAttachment

	return types.HeuristicFeatures{
		HeaderScore:     header.score,
		URLScore:        urls.score,
		NLPScore:        nlp.score,
		AttachmentScore: attachmentScore,
		TotalScore:      total,
		Signals: types.SignalBag{
			HeaderFindings:  header.findings,
			HeaderDetails:   header.details,
			URLFindings:     urls.findings,
			URLMetadata:     urls.metadata,
			NLPDescriptions: nlp.descriptions,
			NLPRaw:          nlp.signals,
		},
	}
}

// heuristicSummary renders the terse Spanish summary handed to the
// classifier, naming only components above their visibility threshold
func heuristicSummary(features types.HeuristicFeatures) string {
	var parts []string

	if features.HeaderScore > summaryVisibilityThreshold {
		parts = append(parts, fmt.Sprintf("Headers: riesgo %.0f/100", features.HeaderScore))
	}

	if features.URLScore > summaryVisibilityThreshold {
		parts = append(parts, fmt.Sprintf("URLs: %d sospechosas, riesgo %.0f/100", len(features.Signals.URLFindings), features.URLScore))
	}

	if features.NLPScore > summaryVisibilityThreshold {
		parts = append(parts, fmt.Sprintf("NLP: %d señales, riesgo %.0f/100", len(features.Signals.NLPDescriptions), features.NLPScore))
	}

	if features.AttachmentScore > attachmentVisibilityThreshold {
		parts = append(parts, fmt.Sprintf("Adjuntos: riesgo %.0f/100", features.AttachmentScore))
	}

	if len(parts) == 0 {
		return "Sin señales significativas"
	}

	return strings.Join(parts, "; ")
}

// recoverBranch swallows a branch panic so the remaining analyzers
// still contribute
func recoverBranch(logger zerolog.Logger, branch string) {
	if r := recover(); r != nil {
		logger.Error().Interface("panic", r).Str("branch", branch).Msg("heuristic branch panicked")
	}
}
