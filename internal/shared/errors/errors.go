package errors

import "errors"

// Domain errors
var (
	// Analysis errors
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrInvalidURL       = errors.New("invalid URL")
	ErrEmptyURL         = errors.New("URL cannot be empty")

	// Feedback errors
	ErrInvalidFeedback = errors.New("invalid feedback")
	ErrInvalidVerdict  = errors.New("verdict must be one of accurate, inaccurate, unsure")

	// Repository errors
	ErrRepositoryOperation   = errors.New("repository operation failed")
	ErrUnsupportedDriver     = errors.New("unsupported storage driver")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Job errors
	ErrJobNotFound = errors.New("job not found")
	ErrNoTargets   = errors.New("no targets supplied")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidInput = errors.New("invalid input")
)
