package session

import "fmt"

// Kind classifies an authentication failure.
type Kind string

const (
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindDuplicateAccount    Kind = "duplicate_account"
	KindWeakPassword        Kind = "weak_password"
	KindExpiredResetLink    Kind = "expired_reset_link"
	KindNotSignedIn         Kind = "not_signed_in"
	KindConfirmationPending Kind = "confirmation_pending"
	KindUnavailable         Kind = "unavailable"
)

var kindMessages = map[Kind]string{
	KindInvalidCredentials:  "Invalid login credentials",
	KindDuplicateAccount:    "User already registered",
	KindWeakPassword:        "Password should be at least 6 characters.",
	KindExpiredResetLink:    "Email link is invalid or has expired",
	KindNotSignedIn:         "Please sign in first.",
	KindConfirmationPending: "Check your email to confirm your account.",
	KindUnavailable:         "The authentication service is unavailable. Please try again.",
}

// AuthError is a typed authentication failure. Message is safe to show.
type AuthError struct {
	Kind    Kind
	Message string
	Cause   error
}

// NewAuthError builds an AuthError with the default message for kind.
func NewAuthError(kind Kind, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: kindMessages[kind], Cause: cause}
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message shown to the user.
func (e *AuthError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return kindMessages[e.Kind]
}
