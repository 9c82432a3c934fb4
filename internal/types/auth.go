package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Session is the signed-in identity held by a session store.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// DisplayName returns the full name, falling back to the email.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.FullName != "" {
		return s.FullName
	}
	return s.Email
}

// SignUpRequest represents the request to create an account.
type SignUpRequest struct {
	FullName string `json:"full_name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInRequest represents the sign-in request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks for a recovery link to be sent.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RecoverRequest opens a recovery link.
type RecoverRequest struct {
	Token string `json:"token" validate:"required"`
}

// PasswordUpdateRequest sets a new password while in recovery mode.
type PasswordUpdateRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by sign-in and sign-up.
type AuthResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name,omitempty"`
	Token    string    `json:"token,omitempty"`
}

// NewAuthResponse builds the response for a session.
func NewAuthResponse(s *Session) AuthResponse {
	return AuthResponse{
		UserID:   s.UserID,
		Email:    s.Email,
		FullName: s.FullName,
		Token:    s.AccessToken,
	}
}

// Validate validates the SignUpRequest using the validator.
func (r *SignUpRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the SignInRequest using the validator.
func (r *SignInRequest) Validate() error {
	return validator.New().Struct(r)
}
