package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// User-facing banner texts.
const (
	ValidationMessage = "Please provide your resume, the job title, and the job description."
	TimeoutMessage    = "Request timed out. This can happen with very large job descriptions. Please try a more concise version."
	BusyMessage       = "An analysis is already in progress."
)

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("controller closed")

// ValidationError reports missing draft fields. The state does not change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TimeoutError reports that the watchdog ended an attempt.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timed out after %s", e.After)
}

// UserMessage returns the banner text.
func (e *TimeoutError) UserMessage() string {
	return TimeoutMessage
}

// BusyError is returned by Analyze while an attempt is in flight.
type BusyError struct{}

func (e *BusyError) Error() string {
	return BusyMessage
}

// StateError is returned by Analyze outside the upload view. The state does
// not change.
type StateError struct {
	State types.AppState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("analysis can only start from the upload view (current state: %s)", e.State)
}
