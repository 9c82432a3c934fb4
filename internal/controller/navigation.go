package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Start moves from Idle to Uploading. It reports whether it transitioned.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.state != types.StateIdle {
		c.mu.Unlock()
		return false
	}
	c.state = types.StateUploading
	c.publishLocked()
	return true
}

// Navigate moves to target. It is a no-op returning false when target needs
// a result that is not held, when target is History while signed out, and
// for Analyzing, which only Analyze enters. Leaving Analyzing cancels the
// attempt.
func (c *Controller) Navigate(target types.AppState) bool {
	c.mu.Lock()
	switch {
	case target == types.StateAnalyzing,
		target.RequiresResult() && c.result == nil,
		target == types.StateHistory && c.user == nil:
		c.mu.Unlock()
		return false
	}

	if c.state == types.StateAnalyzing {
		c.abandonAttemptLocked()
	}
	c.state = target
	c.publishLocked()
	return true
}

// OpenHistory loads the signed-in user's analyses and shows History. When
// signed out it sets the access banner and returns
// persistence.ErrAccessDenied without a transition.
func (c *Controller) OpenHistory(ctx context.Context) ([]types.HistoryRecord, error) {
	c.mu.Lock()
	var sess *types.Session
	if c.user != nil {
		s := *c.user
		sess = &s
	}
	if sess == nil || c.store == nil {
		c.setBannerLocked(ErrorAccess, persistence.AccessDeniedMessage)
		c.publishLocked()
		return nil, persistence.ErrAccessDenied
	}
	c.mu.Unlock()

	records, err := c.store.ListAnalyses(ctx, sess)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to load history")
		return nil, err
	}

	c.mu.Lock()
	if c.user == nil || c.user.UserID != sess.UserID {
		// Signed out or switched accounts while loading.
		c.mu.Unlock()
		return nil, persistence.ErrAccessDenied
	}
	if c.state == types.StateAnalyzing {
		c.abandonAttemptLocked()
	}
	c.history = records
	c.state = types.StateHistory
	c.clearBannerLocked()
	out := make([]types.HistoryRecord, len(records))
	for i, rec := range records {
		out[i] = cloneRecord(rec)
	}
	c.publishLocked()
	return out, nil
}

// HistoryEntry looks up a record loaded by the last OpenHistory.
func (c *Controller) HistoryEntry(id uuid.UUID) (types.HistoryRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.history {
		if rec.ID == id {
			return cloneRecord(rec), true
		}
	}
	return types.HistoryRecord{}, false
}

// SelectHistoryEntry hydrates the draft, the parse and the result from rec
// and shows Result.
func (c *Controller) SelectHistoryEntry(rec types.HistoryRecord) {
	c.mu.Lock()
	if c.state == types.StateAnalyzing {
		c.abandonAttemptLocked()
	}
	if c.cancelPrefetch != nil {
		c.cancelPrefetch()
		c.cancelPrefetch = nil
	}

	resume := rec.ResumeData.Clone()
	result := rec.AnalysisResult.Clone()
	c.draft = Draft{
		ResumeText:     resume.PlainText(),
		JobTitle:       rec.JobTitle,
		JobDescription: rec.JobDescription,
	}
	c.draftRev++
	c.parsed = &resume
	c.result = &result
	c.clearBannerLocked()
	c.state = types.StateResult
	c.publishLocked()
}

// Reset clears the draft, the parse, the result, the history, the banner
// and the progress, cancels any attempt and returns to Idle. Calling it
// repeatedly leaves the same state.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.publishLocked()
}

func (c *Controller) resetLocked() {
	if c.state == types.StateAnalyzing {
		c.abandonAttemptLocked()
	}
	if c.cancelPrefetch != nil {
		c.cancelPrefetch()
		c.cancelPrefetch = nil
	}
	c.draft = Draft{}
	c.draftRev++
	c.parsed = nil
	c.result = nil
	c.history = nil
	c.attemptErr = nil
	c.clearBannerLocked()
	c.progress = ""
	c.state = types.StateIdle
}

// DismissError clears the banner.
func (c *Controller) DismissError() {
	c.mu.Lock()
	if c.banner == "" {
		c.mu.Unlock()
		return
	}
	c.clearBannerLocked()
	c.publishLocked()
}

// ShowAuthError sets an auth banner, e.g. after a failed sign-in.
func (c *Controller) ShowAuthError(msg string) {
	c.mu.Lock()
	c.setBannerLocked(ErrorAuth, msg)
	c.publishLocked()
}
