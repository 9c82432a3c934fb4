// Package session holds the signed-in identity of a workspace and the auth
// backends behind it.
package session

import (
	"context"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Backend is the external authentication service.
type Backend interface {
	SignUp(ctx context.Context, fullName, email, password string) (*types.Session, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	SignOut(ctx context.Context, s *types.Session) error
	// RequestPasswordReset sends a recovery link that lands on redirectURL.
	// Unknown emails succeed silently.
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
	// VerifyRecovery exchanges a recovery token for a short-lived session.
	VerifyRecovery(ctx context.Context, token string) (*types.Session, error)
	UpdatePassword(ctx context.Context, s *types.Session, newPassword string) error
	// VerifyToken resolves an access token to its session.
	VerifyToken(ctx context.Context, accessToken string) (*types.Session, error)
}
