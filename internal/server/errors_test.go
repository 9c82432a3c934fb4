package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request validation", &ErrValidation{Field: "email", Message: "email"}, http.StatusBadRequest},
		{"draft validation", &controller.ValidationError{Message: controller.ValidationMessage}, http.StatusBadRequest},
		{"invalid credentials", session.NewAuthError(session.KindInvalidCredentials, nil), http.StatusUnauthorized},
		{"not signed in", session.NewAuthError(session.KindNotSignedIn, nil), http.StatusUnauthorized},
		{"confirmation pending", session.NewAuthError(session.KindConfirmationPending, nil), http.StatusForbidden},
		{"access denied", persistence.ErrAccessDenied, http.StatusForbidden},
		{"duplicate account", session.NewAuthError(session.KindDuplicateAccount, nil), http.StatusConflict},
		{"busy", &controller.BusyError{}, http.StatusConflict},
		{"analyze outside upload view", &controller.StateError{State: types.StateIdle}, http.StatusConflict},
		{"speech busy", ErrSpeechBusy, http.StatusConflict},
		{"expired reset link", session.NewAuthError(session.KindExpiredResetLink, nil), http.StatusGone},
		{"weak password", session.NewAuthError(session.KindWeakPassword, nil), http.StatusUnprocessableEntity},
		{"auth unavailable", session.NewAuthError(session.KindUnavailable, errors.New("dial")), http.StatusServiceUnavailable},
		{"analysis", &analysis.AnalysisError{Message: analysis.AnalysisFailedMessage}, http.StatusBadGateway},
		{"fetch", fmt.Errorf("failed to import job posting: %w", &fetch.Error{URL: "u", Message: "HTTP status 404"}), http.StatusBadGateway},
		{"timeout", &controller.TimeoutError{After: time.Minute}, http.StatusGatewayTimeout},
		{"unsupported file", fmt.Errorf("%w: image/png", ingestion.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{"no text", ingestion.ErrNoText, http.StatusUnprocessableEntity},
		{"workspace missing", ErrWorkspaceNotFound, http.StatusNotFound},
		{"history record missing", fmt.Errorf("select: %w", ErrRecordNotFound), http.StatusNotFound},
		{"closed", controller.ErrClosed, http.StatusGone},
		{"wrapped auth", fmt.Errorf("sign in: %w", session.NewAuthError(session.KindWeakPassword, nil)), http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", session.NewAuthError(session.KindInvalidCredentials, errors.New("grant")), "Invalid login credentials"},
		{"analysis", &analysis.AnalysisError{Message: analysis.AnalysisFailedMessage, Cause: errors.New("503")}, analysis.AnalysisFailedMessage},
		{"timeout", &controller.TimeoutError{After: time.Second}, controller.TimeoutMessage},
		{"access", persistence.ErrAccessDenied, persistence.AccessDeniedMessage},
		{"validation", &ErrValidation{Field: "email", Message: "required"}, "validation error: email - required"},
		{"internal", errors.New("pq: connection refused"), "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := validator.New().Struct(types.SignInRequest{Email: "not-an-email", Password: "x"})
	assert.Equal(t, "validation error: Email - email", validationError(err).Error())

	err = validator.New().Struct(types.ContactMessageRequest{Email: "a@b.co", Message: "hi"})
	assert.Equal(t, "validation error: Name - required", validationError(err).Error())

	assert.Equal(t, "validation error: request - invalid", validationError(errors.New("x")).Error())
}
