// Package server provides the HTTP API of the résumé analyzer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/session"
)

// ErrWorkspaceNotFound is returned for unknown or evicted workspace ids.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ErrRecordNotFound is returned for history ids that were not loaded.
var ErrRecordNotFound = errors.New("history record not found")

// ErrSpeechBusy is returned while a workspace is already synthesizing speech.
var ErrSpeechBusy = errors.New("speech synthesis already in progress")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts a validator failure into *ErrValidation, keeping
// the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fe.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid"}
}

var authStatus = map[session.Kind]int{
	session.KindInvalidCredentials:  http.StatusUnauthorized,
	session.KindNotSignedIn:         http.StatusUnauthorized,
	session.KindConfirmationPending: http.StatusForbidden,
	session.KindDuplicateAccount:    http.StatusConflict,
	session.KindExpiredResetLink:    http.StatusGone,
	session.KindWeakPassword:        http.StatusUnprocessableEntity,
	session.KindUnavailable:         http.StatusServiceUnavailable,
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		ctrlValErr    *controller.ValidationError
		authErr       *session.AuthError
		busyErr       *controller.BusyError
		stateErr      *controller.StateError
		analysisErr   *analysis.AnalysisError
		timeoutErr    *controller.TimeoutError
		fetchErr      *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &ctrlValErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		if status, ok := authStatus[authErr.Kind]; ok {
			return status
		}
		return http.StatusUnauthorized
	case errors.Is(err, persistence.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrWorkspaceNotFound), errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &busyErr), errors.As(err, &stateErr), errors.Is(err, ErrSpeechBusy):
		return http.StatusConflict
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrNoText), errors.Is(err, ingestion.ErrEmptyPosting):
		return http.StatusUnprocessableEntity
	case errors.As(err, &analysisErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.Is(err, controller.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the text shown to clients for err. Unclassified
// errors are not echoed.
func errorMessage(err error) string {
	var (
		authErr     *session.AuthError
		analysisErr *analysis.AnalysisError
		timeoutErr  *controller.TimeoutError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.UserMessage()
	case errors.As(err, &analysisErr):
		return analysisErr.Message
	case errors.As(err, &timeoutErr):
		return timeoutErr.UserMessage()
	case errors.Is(err, persistence.ErrAccessDenied):
		return persistence.AccessDeniedMessage
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
