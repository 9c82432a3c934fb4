package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps ListAnalysesByUser when no limit is given
const DefaultHistoryLimit = 50

// InsertAnalysis stores an analysis and returns it with ID and timestamp set
func (db *DB) InsertAnalysis(ctx context.Context, a *Analysis) (*Analysis, error) {
	out := *a
	err := db.pool.QueryRow(ctx,
		`INSERT INTO analyses (user_id, job_title, job_description, resume_data, analysis_result)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.UserID, a.JobTitle, a.JobDescription, a.ResumeData, a.AnalysisResult,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return &out, nil
}

// ListAnalysesByUser returns a user's analyses, newest first
func (db *DB) ListAnalysesByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_title, job_description, resume_data, analysis_result, created_at
		 FROM analyses
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobTitle, &a.JobDescription,
			&a.ResumeData, &a.AnalysisResult, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}
