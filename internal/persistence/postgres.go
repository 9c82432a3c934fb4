package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// AnalysisStore is the subset of *db.DB used by Postgres.
type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, a *db.Analysis) (*db.Analysis, error)
	ListAnalysesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]db.Analysis, error)
	InsertContactMessage(ctx context.Context, name, email, message string) (uuid.UUID, error)
}

// Postgres persists through the application's own database.
type Postgres struct {
	store AnalysisStore
	limit int
}

// NewPostgres creates a Postgres client. A non-positive limit uses
// db.DefaultHistoryLimit.
func NewPostgres(store AnalysisStore, limit int) *Postgres {
	if limit <= 0 {
		limit = db.DefaultHistoryLimit
	}
	return &Postgres{store: store, limit: limit}
}

// SaveAnalysis inserts rec and fills in its ID and CreatedAt.
func (p *Postgres) SaveAnalysis(ctx context.Context, s *types.Session, rec *types.HistoryRecord) error {
	if s == nil {
		return ErrAccessDenied
	}

	resumeJSON, err := json.Marshal(rec.ResumeData)
	if err != nil {
		return wrapErr("save_analysis", fmt.Errorf("failed to marshal resume data: %w", err))
	}
	resultJSON, err := json.Marshal(rec.AnalysisResult)
	if err != nil {
		return wrapErr("save_analysis", fmt.Errorf("failed to marshal analysis result: %w", err))
	}

	row, err := p.store.InsertAnalysis(ctx, &db.Analysis{
		UserID:         s.UserID,
		JobTitle:       rec.JobTitle,
		JobDescription: rec.JobDescription,
		ResumeData:     resumeJSON,
		AnalysisResult: resultJSON,
	})
	if err != nil {
		return wrapErr("save_analysis", err)
	}

	rec.ID = row.ID
	rec.UserID = row.UserID
	rec.CreatedAt = row.CreatedAt
	return nil
}

// ListAnalyses returns the user's analyses, newest first.
func (p *Postgres) ListAnalyses(ctx context.Context, s *types.Session) ([]types.HistoryRecord, error) {
	if s == nil {
		return nil, ErrAccessDenied
	}

	rows, err := p.store.ListAnalysesByUser(ctx, s.UserID, p.limit)
	if err != nil {
		return nil, wrapErr("list_analyses", err)
	}

	records := make([]types.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, wrapErr("list_analyses", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveContactMessage stores a contact form submission.
func (p *Postgres) SaveContactMessage(ctx context.Context, name, email, message string) error {
	if _, err := p.store.InsertContactMessage(ctx, name, email, message); err != nil {
		return wrapErr("save_contact_message", err)
	}
	return nil
}

func recordFromRow(row db.Analysis) (types.HistoryRecord, error) {
	rec := types.HistoryRecord{
		ID:             row.ID,
		UserID:         row.UserID,
		CreatedAt:      row.CreatedAt,
		JobTitle:       row.JobTitle,
		JobDescription: row.JobDescription,
	}
	if err := json.Unmarshal(row.ResumeData, &rec.ResumeData); err != nil {
		return rec, fmt.Errorf("failed to unmarshal resume data of %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.AnalysisResult, &rec.AnalysisResult); err != nil {
		return rec, fmt.Errorf("failed to unmarshal analysis result of %s: %w", row.ID, err)
	}
	rec.ResumeData.Normalize()
	rec.AnalysisResult.Normalize()
	return rec, nil
}
