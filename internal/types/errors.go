package types

import "errors"

var (
	// ErrInvalidClassification is returned when a classification is not an allowed literal
	ErrInvalidClassification = errors.New("classification must be phishing, sospechoso, or seguro")
	// ErrInvalidRiskScore is returned when a risk score falls outside 0-100
	ErrInvalidRiskScore = errors.New("risk score must be between 0 and 100")
	// ErrTooManyReasons is returned when a response carries more than three reasons
	ErrTooManyReasons = errors.New("response must carry at most three top reasons")
	// ErrTooManyActions is returned when a response carries more than three actions
	ErrTooManyActions = errors.New("response must carry at most three recommended actions")
	// ErrSummaryTooLong is returned when a summary exceeds sixty words
	ErrSummaryTooLong = errors.New("summary must not exceed sixty words")
)
