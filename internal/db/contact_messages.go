package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// InsertContactMessage stores a contact form submission
func (db *DB) InsertContactMessage(ctx context.Context, name, email, message string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, message)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		strings.TrimSpace(name), NormalizeEmail(email), strings.TrimSpace(message),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert contact message: %w", err)
	}
	return id, nil
}
