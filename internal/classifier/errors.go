package classifier

import "errors"

var (
	// ErrMissingAPIKey is returned when no API key is configured
	ErrMissingAPIKey = errors.New("missing classifier api key")

	// ErrBudgetExhausted is returned when the remaining latency budget is
	// too small to attempt a call
	ErrBudgetExhausted = errors.New("latency budget exhausted")

	// ErrUnavailable is returned when every attempt failed
	ErrUnavailable = errors.New("classifier unavailable")

	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("empty model response")

	// ErrNoJSON is returned when no JSON object is found in the response
	ErrNoJSON = errors.New("no json object in model response")

	// ErrMissingField is returned when a required response field is absent
	ErrMissingField = errors.New("missing required response field")
)
