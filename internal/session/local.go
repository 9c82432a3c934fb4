package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// UserStore is the subset of *db.DB the local backend needs.
type UserStore interface {
	CreateUser(ctx context.Context, fullName, email, passwordHash string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	CreatePasswordReset(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string) (*db.PasswordReset, error)
}

// Mailer delivers password recovery links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogMailer writes recovery links to the log instead of sending mail.
type LogMailer struct {
	Log zerolog.Logger
}

// SendPasswordReset logs the link.
func (m LogMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.Log.Info().Str("email", email).Str("link", link).Msg("password reset link issued")
	return nil
}

// LocalBackend authenticates against the application's own PostgreSQL
// tables with bcrypt passwords and HS256 access tokens.
type LocalBackend struct {
	users     UserStore
	passwords *config.PasswordConfig
	tokens    *JWTService
	mailer    Mailer
	resetTTL  time.Duration
	now       func() time.Time
}

// NewLocalBackend creates a LocalBackend.
func NewLocalBackend(users UserStore, passwords *config.PasswordConfig, tokens *JWTService, mailer Mailer, resetTTL time.Duration) *LocalBackend {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &LocalBackend{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// SignUp creates an account and returns its session.
func (b *LocalBackend) SignUp(ctx context.Context, fullName, email, password string) (*types.Session, error) {
	if !b.passwords.IsStrongEnough(password) {
		return nil, NewAuthError(KindWeakPassword, nil)
	}

	hash, err := b.passwords.HashPassword(password)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}

	user, err := b.users.CreateUser(ctx, fullName, email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, NewAuthError(KindDuplicateAccount, err)
		}
		return nil, NewAuthError(KindUnavailable, err)
	}
	return b.issue(user)
}

// SignIn verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (b *LocalBackend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	user, err := b.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	if user == nil || !b.passwords.VerifyPassword(password, user.PasswordHash) {
		return nil, NewAuthError(KindInvalidCredentials, nil)
	}
	return b.issue(user)
}

// SignOut is a no-op: access tokens are stateless.
func (b *LocalBackend) SignOut(context.Context, *types.Session) error {
	return nil
}

// RequestPasswordReset issues a single-use recovery token for email.
func (b *LocalBackend) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	user, err := b.users.GetUserByEmail(ctx, email)
	if err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	if user == nil {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	if err := b.users.CreatePasswordReset(ctx, user.ID, hashResetToken(token), b.now().Add(b.resetTTL)); err != nil {
		return NewAuthError(KindUnavailable, err)
	}

	link, err := resetLink(redirectURL, token)
	if err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	if err := b.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	return nil
}

// VerifyRecovery consumes a recovery token.
func (b *LocalBackend) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewAuthError(KindExpiredResetLink, nil)
	}

	reset, err := b.users.ConsumePasswordReset(ctx, hashResetToken(token))
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	if reset == nil {
		return nil, NewAuthError(KindExpiredResetLink, nil)
	}

	user, err := b.users.GetUser(ctx, reset.UserID)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	if user == nil {
		return nil, NewAuthError(KindExpiredResetLink, nil)
	}
	return b.issue(user)
}

// UpdatePassword replaces the password of the session's user.
func (b *LocalBackend) UpdatePassword(ctx context.Context, s *types.Session, newPassword string) error {
	if s == nil {
		return NewAuthError(KindNotSignedIn, nil)
	}
	if !b.passwords.IsStrongEnough(newPassword) {
		return NewAuthError(KindWeakPassword, nil)
	}

	hash, err := b.passwords.HashPassword(newPassword)
	if err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	if err := b.users.UpdatePassword(ctx, s.UserID, hash); err != nil {
		return NewAuthError(KindUnavailable, err)
	}
	return nil
}

// VerifyToken validates an access token and reloads its user.
func (b *LocalBackend) VerifyToken(ctx context.Context, accessToken string) (*types.Session, error) {
	claims, err := b.tokens.ValidateToken(accessToken)
	if err != nil {
		return nil, NewAuthError(KindNotSignedIn, err)
	}

	user, err := b.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	if user == nil {
		return nil, NewAuthError(KindNotSignedIn, nil)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &types.Session{
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (b *LocalBackend) issue(user *db.User) (*types.Session, error) {
	token, expiresAt, err := b.tokens.GenerateToken(user.ID, user.Email, user.FullName)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	return &types.Session{
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
