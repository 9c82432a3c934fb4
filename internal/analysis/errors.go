package analysis

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	AnalysisFailedMessage     = "Analysis failed. This might be due to a network error or an issue with the AI service. Please try again."
	FallbackInterviewQuestion = "Tell me about a time you handled a complex technical challenge in a high-pressure environment."
)

// ErrSpeechUnavailable is returned when no synthesizer is configured.
var ErrSpeechUnavailable = errors.New("speech synthesis unavailable")

// ErrEmptyInput is returned when there is nothing to send to the model.
var ErrEmptyInput = errors.New("empty input")

// ExtractionError records a failed résumé parse. It is logged, never surfaced.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract resume: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// AnalysisError is a scoring failure. Error returns the user-facing message;
// the cause stays available through errors.Unwrap.
type AnalysisError struct {
	Message string
	Cause   error
}

func newAnalysisError(cause error) *AnalysisError {
	return &AnalysisError{Message: AnalysisFailedMessage, Cause: cause}
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
