package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the writer cannot be configured.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)
