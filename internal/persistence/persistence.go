// Package persistence stores analysis history and contact messages for
// signed-in users. Two adapters exist: Postgres over internal/db and
// Supabase over PostgREST.
package persistence

import (
	"context"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// Client is the persistence service used by the controller and the HTTP layer.
type Client interface {
	// SaveAnalysis stores rec for the session's user.
	SaveAnalysis(ctx context.Context, s *types.Session, rec *types.HistoryRecord) error
	// ListAnalyses returns the session user's records, newest first.
	// A nil session yields ErrAccessDenied.
	ListAnalyses(ctx context.Context, s *types.Session) ([]types.HistoryRecord, error)
	// SaveContactMessage stores a contact form submission.
	SaveContactMessage(ctx context.Context, name, email, message string) error
}
