package classifier

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/theopenlane/phishguard/internal/types"
)

const (
	// defaultModel is the Gemini model used when none is configured
	defaultModel = "gemini-2.5-pro"
	// defaultMaxRetries is the number of retries after the first attempt
	defaultMaxRetries = 1
	// attemptCeiling caps how long a single model call may take
	attemptCeiling = 1200 * time.Millisecond
	// minCallBudget is the smallest remaining budget worth an attempt
	minCallBudget = 300 * time.Millisecond
	// retryJitterBase and retryJitterRange bound the backoff between
	// attempts: base plus a uniform draw from the range
	retryJitterBase  = 100 * time.Millisecond
	retryJitterRange = 200 * time.Millisecond

	// generation settings chosen for consistent, parseable verdicts
	generationTemperature = 0.1
	generationTopP        = 0.8
	generationTopK        = 40
	generationMaxTokens   = 1000
)

// generateFunc issues one model call and returns the raw response text
type generateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// GeminiClient classifies emails via the Gemini API with bounded
// retries under the request latency budget
type GeminiClient struct {
	logger     zerolog.Logger
	model      string
	maxRetries int
	generate   generateFunc
}

// GeminiOption configures the GeminiClient
type GeminiOption func(*GeminiClient)

// WithGeminiLogger sets the logger used for attempt diagnostics
func WithGeminiLogger(logger zerolog.Logger) GeminiOption {
	return func(c *GeminiClient) {
		c.logger = logger
	}
}

// WithModel overrides the Gemini model name
func WithModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxRetries overrides the retry count after the first attempt
func WithMaxRetries(n int) GeminiOption {
	return func(c *GeminiClient) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewGeminiClient creates a Gemini-backed classifier
func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	c := &GeminiClient{
		logger:     zerolog.Nop(),
		model:      defaultModel,
		maxRetries: defaultMaxRetries,
	}

	c.generate = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](generationTemperature),
			TopP:              genai.Ptr[float32](generationTopP),
			TopK:              genai.Ptr[float32](generationTopK),
			MaxOutputTokens:   generationMaxTokens,
		}

		result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), config)
		if err != nil {
			return "", err
		}

		text := result.Text()
		if text == "" {
			return "", ErrEmptyResponse
		}

		return text, nil
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Classify asks the model for a verdict, retrying once with jitter on
// failure. Attempts stop as soon as the remaining latency budget drops
// below the minimum useful call time.
func (c *GeminiClient) Classify(ctx context.Context, data types.PromptData) (*types.ClassificationResponse, error) {
	started := time.Now()

	userPrompt := buildUserPrompt(data)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		remaining := data.LatencyBudget - time.Since(started)
		if remaining < minCallBudget {
			c.logger.Warn().Dur("remaining", remaining).Msg("insufficient budget for classifier call")

			return nil, ErrBudgetExhausted
		}

		attemptCtx, cancel := context.WithTimeout(ctx, min(remaining, attemptCeiling))
		text, err := c.generate(attemptCtx, systemPrompt, userPrompt)

		cancel()

		if err == nil {
			response, parseErr := parseResponse(text)
			if parseErr == nil {
				response.LatencyMs = time.Since(started).Milliseconds()

				return response, nil
			}

			err = parseErr
		}

		c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("classifier attempt failed")

		if attempt < c.maxRetries {
			if err := sleepWithJitter(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, ErrUnavailable
}

// sleepWithJitter pauses between attempts, honoring context cancellation
func sleepWithJitter(ctx context.Context) error {
	delay := retryJitterBase + rand.N(retryJitterRange)

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
