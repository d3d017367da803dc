package slack

import "errors"

var (
	// ErrMissingWebhookURL is returned when no webhook URL is configured
	ErrMissingWebhookURL = errors.New("missing slack webhook url")

	// ErrSendFailed is returned when the webhook request cannot be delivered
	ErrSendFailed = errors.New("slack alert delivery failed")

	// ErrUnexpectedStatus is returned when the webhook answers non-200
	ErrUnexpectedStatus = errors.New("unexpected slack webhook status")
)
