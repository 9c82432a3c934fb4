package db

import (
	"time"

	"github.com/google/uuid"
)

// User is an account of the local auth backend
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PasswordReset is a pending reset link, keyed by the SHA-256 of its token
type PasswordReset struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Analysis is a stored analysis row. The JSONB columns stay raw so callers
// decide how to decode them.
type Analysis struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	JobTitle       string
	JobDescription string
	ResumeData     []byte
	AnalysisResult []byte
	CreatedAt      time.Time
}

// ContactMessage is a submission of the contact form
type ContactMessage struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}
