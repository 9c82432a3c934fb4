package persistence

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned when history is requested without a session.
var ErrAccessDenied = errors.New("access denied: not signed in")

// AccessDeniedMessage is shown when history is opened while signed out.
const AccessDeniedMessage = "Please sign in to view your history."

// PersistenceError wraps a failed storage operation.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Cause: err}
}
