package controller

import (
	"time"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// ErrorKind classifies the banner currently shown.
type ErrorKind string

const (
	ErrorValidation ErrorKind = "validation"
	ErrorAnalysis   ErrorKind = "analysis"
	ErrorTimeout    ErrorKind = "timeout"
	ErrorAccess     ErrorKind = "access"
	ErrorAuth       ErrorKind = "auth"
)

// Draft is the user's unsubmitted input.
type Draft struct {
	ResumeText     string `json:"resume_text"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
}

// User is the signed-in identity shown to the renderer.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Snapshot is an immutable copy of the controller state. Version grows with
// every published change; listeners may receive snapshots out of order under
// concurrent updates and should ignore versions older than the last seen.
type Snapshot struct {
	Version        uint64                `json:"version"`
	State          types.AppState        `json:"state"`
	Draft          Draft                 `json:"draft"`
	ResumeData     *types.ResumeData     `json:"resume_data,omitempty"`
	AnalysisResult *types.AnalysisResult `json:"analysis_result,omitempty"`
	History        []types.HistoryRecord `json:"history,omitempty"`
	Error          string                `json:"error,omitempty"`
	ErrorKind      ErrorKind             `json:"error_kind,omitempty"`
	Progress       string                `json:"progress,omitempty"`
	User           *User                 `json:"user,omitempty"`
	RecoveryMode   bool                  `json:"recovery_mode"`
	AnalyzingSince *time.Time            `json:"analyzing_since,omitempty"`
}

// HasResult reports whether an analysis result is held.
func (s Snapshot) HasResult() bool {
	return s.AnalysisResult != nil
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:      c.version,
		State:        c.state,
		Draft:        c.draft,
		Error:        c.banner,
		ErrorKind:    c.bannerKind,
		Progress:     c.progress,
		RecoveryMode: c.recovery,
	}
	if c.parsed != nil {
		rd := c.parsed.Clone()
		snap.ResumeData = &rd
	}
	if c.result != nil {
		res := c.result.Clone()
		snap.AnalysisResult = &res
	}
	if len(c.history) > 0 {
		snap.History = make([]types.HistoryRecord, len(c.history))
		for i, rec := range c.history {
			snap.History[i] = cloneRecord(rec)
		}
	}
	if c.user != nil {
		snap.User = &User{Name: c.user.DisplayName(), Email: c.user.Email}
	}
	if !c.analyzingSince.IsZero() {
		since := c.analyzingSince
		snap.AnalyzingSince = &since
	}
	return snap
}

func cloneRecord(rec types.HistoryRecord) types.HistoryRecord {
	out := rec
	out.ResumeData = rec.ResumeData.Clone()
	out.AnalysisResult = rec.AnalysisResult.Clone()
	return out
}
