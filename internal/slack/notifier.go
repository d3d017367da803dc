// Package slack delivers phishing verdict alerts to a Slack incoming
// webhook so flagged emails reach a security channel without anyone
// polling the classification API.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/theopenlane/httpsling"

	"github.com/theopenlane/phishguard/internal/types"
)

const (
	// defaultRequestTimeout bounds a single webhook delivery
	defaultRequestTimeout = 10 * time.Second
	// maxReasonsInAlert caps how many reasons the alert lists
	maxReasonsInAlert = 3
)

// message is the webhook payload: fallback text plus Block Kit blocks
type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

// block is a single Block Kit block
type block struct {
	Type   string       `json:"type"`
	Text   *textObject  `json:"text,omitempty"`
	Fields []textObject `json:"fields,omitempty"`
}

// textObject is a Block Kit text element, plain_text or mrkdwn
type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Client posts verdict alerts to one configured incoming webhook
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for webhook deliveries
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a webhook alert client
func New(webhookURL string, opts ...Option) (*Client, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}

	c := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NotifyVerdict posts an alert for a flagged email classification
func (c *Client) NotifyVerdict(ctx context.Context, response *types.ClassificationResponse) error {
	if response == nil {
		return nil
	}

	return c.post(ctx, buildVerdictMessage(response))
}

// post delivers one message to the webhook endpoint
func (c *Client) post(ctx context.Context, msg message) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.JSONBody(msg),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful in the close error

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// buildVerdictMessage renders a classification as a Block Kit alert
func buildVerdictMessage(response *types.ClassificationResponse) message {
	fallback := fmt.Sprintf("Email classified as %s (risk %d/100)", response.Classification, response.RiskScore)

	blocks := []block{
		{
			Type: "header",
			Text: &textObject{Type: "plain_text", Text: "Phishing email detected"},
		},
		{
			Type: "section",
			Fields: []textObject{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Classification:*\n%s", response.Classification)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Risk score:*\n%d/100", response.RiskScore)},
			},
		},
	}

	if reasons := formatReasons(response.TopReasons); reasons != "" {
		blocks = append(blocks, block{
			Type: "section",
			Text: &textObject{Type: "mrkdwn", Text: reasons},
		})
	}

	if response.NonTechnicalSummary != "" {
		blocks = append(blocks, block{
			Type: "section",
			Text: &textObject{Type: "mrkdwn", Text: response.NonTechnicalSummary},
		})
	}

	return message{
		Text:   fallback,
		Blocks: blocks,
	}
}

// formatReasons renders the top reasons as a mrkdwn bullet list
func formatReasons(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}

	if len(reasons) > maxReasonsInAlert {
		reasons = reasons[:maxReasonsInAlert]
	}

	var b strings.Builder

	b.WriteString("*Top reasons:*")

	for _, reason := range reasons {
		b.WriteString("\n• ")
		b.WriteString(reason)
	}

	return b.String()
}
