package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/tidwall/gjson"
)

// Supabase persists through PostgREST. Row-level security on the hosted
// tables scopes every request to the bearer token's user.
type Supabase struct {
	client *resty.Client
	limit  int
}

// NewSupabase uses a client configured with the project URL and anon key
// (see session.NewSupabaseClient).
func NewSupabase(client *resty.Client, limit int) *Supabase {
	if limit <= 0 {
		limit = 50
	}
	return &Supabase{client: client, limit: limit}
}

type analysisRow struct {
	UserID         uuid.UUID            `json:"user_id"`
	JobTitle       string               `json:"job_title"`
	JobDescription string               `json:"job_description"`
	ResumeData     types.ResumeData     `json:"resume_data"`
	AnalysisResult types.AnalysisResult `json:"analysis_result"`
}

// SaveAnalysis inserts rec. The row's id and created_at are assigned by the
// database and not read back.
func (s *Supabase) SaveAnalysis(ctx context.Context, sess *types.Session, rec *types.HistoryRecord) error {
	if sess == nil {
		return ErrAccessDenied
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(sess.AccessToken).
		SetHeader("Prefer", "return=minimal").
		SetBody(analysisRow{
			UserID:         sess.UserID,
			JobTitle:       rec.JobTitle,
			JobDescription: rec.JobDescription,
			ResumeData:     rec.ResumeData,
			AnalysisResult: rec.AnalysisResult,
		}).
		Post("/rest/v1/analyses")
	if err := checkREST(resp, err); err != nil {
		return wrapErr("save_analysis", err)
	}
	rec.UserID = sess.UserID
	return nil
}

// ListAnalyses returns the user's analyses, newest first.
func (s *Supabase) ListAnalyses(ctx context.Context, sess *types.Session) ([]types.HistoryRecord, error) {
	if sess == nil {
		return nil, ErrAccessDenied
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(sess.AccessToken).
		SetQueryParams(map[string]string{
			"select": "*",
			"order":  "created_at.desc",
			"limit":  fmt.Sprint(s.limit),
		}).
		Get("/rest/v1/analyses")
	if err := checkREST(resp, err); err != nil {
		return nil, wrapErr("list_analyses", err)
	}

	body := gjson.Parse(resp.String())
	if !body.IsArray() {
		return nil, wrapErr("list_analyses", fmt.Errorf("unexpected response body"))
	}

	var records []types.HistoryRecord
	for _, row := range body.Array() {
		rec, err := recordFromJSON(row)
		if err != nil {
			return nil, wrapErr("list_analyses", err)
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []types.HistoryRecord{}
	}
	return records, nil
}

// SaveContactMessage inserts a contact form submission with the anon key.
func (s *Supabase) SaveContactMessage(ctx context.Context, name, email, message string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(map[string]string{"name": name, "email": email, "message": message}).
		Post("/rest/v1/contact_messages")
	if err := checkREST(resp, err); err != nil {
		return wrapErr("save_contact_message", err)
	}
	return nil
}

func recordFromJSON(row gjson.Result) (types.HistoryRecord, error) {
	var rec types.HistoryRecord

	id, err := uuid.Parse(row.Get("id").String())
	if err != nil {
		return rec, fmt.Errorf("failed to parse analysis id: %w", err)
	}
	rec.ID = id
	rec.UserID, _ = uuid.Parse(row.Get("user_id").String())
	rec.JobTitle = row.Get("job_title").String()
	rec.JobDescription = row.Get("job_description").String()
	if created := row.Get("created_at").String(); created != "" {
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
	}

	if raw := row.Get("resume_data").Raw; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &rec.ResumeData); err != nil {
			return rec, fmt.Errorf("failed to unmarshal resume data of %s: %w", id, err)
		}
	}
	if raw := row.Get("analysis_result").Raw; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &rec.AnalysisResult); err != nil {
			return rec, fmt.Errorf("failed to unmarshal analysis result of %s: %w", id, err)
		}
	}
	rec.ResumeData.Normalize()
	rec.AnalysisResult.Normalize()
	return rec, nil
}

func checkREST(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("failed to reach database service: %w", err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "message").String()
		return fmt.Errorf("database service returned %d: %s", resp.StatusCode(), msg)
	}
	return nil
}
