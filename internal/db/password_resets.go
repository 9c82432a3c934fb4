package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreatePasswordReset stores a reset token hash for a user
func (db *DB) CreatePasswordReset(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO password_resets (token_hash, user_id, expires_at)
		 VALUES ($1, $2, $3)`,
		tokenHash, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// ConsumePasswordReset marks an unexpired, unused token as used and returns
// it. Unknown, expired and already used tokens return nil, nil.
func (db *DB) ConsumePasswordReset(ctx context.Context, tokenHash string) (*PasswordReset, error) {
	var r PasswordReset
	err := db.pool.QueryRow(ctx,
		`UPDATE password_resets
		 SET used_at = NOW()
		 WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		 RETURNING token_hash, user_id, expires_at, used_at`,
		tokenHash,
	).Scan(&r.TokenHash, &r.UserID, &r.ExpiresAt, &r.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume password reset: %w", err)
	}
	return &r, nil
}

// DeleteExpiredPasswordResets removes tokens that can no longer be used
func (db *DB) DeleteExpiredPasswordResets(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM password_resets WHERE expires_at <= NOW() OR used_at IS NOT NULL`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password resets: %w", err)
	}
	return tag.RowsAffected(), nil
}
