package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Analyze validates the draft and starts an attempt: extraction when no
// usable parse is cached, then scoring, then commit. It returns once the
// attempt is running; ctx bounds the model calls and must outlive the call.
//
// Blank input yields *ValidationError with no transition. An attempt
// already in flight yields *BusyError, and any state other than Uploading
// yields *StateError.
func (c *Controller) Analyze(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == types.StateAnalyzing {
		c.mu.Unlock()
		return &BusyError{}
	}
	if c.state != types.StateUploading {
		state := c.state
		c.mu.Unlock()
		return &StateError{State: state}
	}

	d := c.draft
	if isBlank(d.ResumeText) || isBlank(d.JobTitle) || isBlank(d.JobDescription) {
		c.setBannerLocked(ErrorValidation, ValidationMessage)
		c.publishLocked()
		return &ValidationError{Message: ValidationMessage}
	}

	c.attempt++
	gen := c.attempt
	rev := c.draftRev
	var cached *types.ResumeData
	if c.parsed != nil {
		rd := c.parsed.Clone()
		cached = &rd
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	c.cancelAttempt = cancel
	c.attemptErr = nil
	c.state = types.StateAnalyzing
	c.analyzingSince = c.now()
	c.progress = ""
	c.clearBannerLocked()
	c.armTimersLocked(gen)

	c.wg.Add(1)
	go c.run(attemptCtx, gen, rev, d, cached)

	c.log.Info().Uint64("attempt", gen).Str("job_title", d.JobTitle).Msg("analysis started")
	c.publishLocked()
	return nil
}

// Cancel abandons an in-flight attempt and returns to Uploading without a
// banner. It reports whether an attempt was cancelled.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.state != types.StateAnalyzing {
		c.mu.Unlock()
		return false
	}
	c.abandonAttemptLocked()
	c.state = types.StateUploading
	c.log.Info().Uint64("attempt", c.attempt).Msg("analysis cancelled")
	c.publishLocked()
	return true
}

// Await blocks until no attempt is in flight and returns the resulting
// snapshot with the error of the last attempt, if any: *TimeoutError or
// *analysis.AnalysisError.
func (c *Controller) Await(ctx context.Context) (Snapshot, error) {
	wake := make(chan struct{}, 1)
	unsubscribe := c.Subscribe(func(Snapshot) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		c.mu.Lock()
		if c.state != types.StateAnalyzing || c.closed {
			snap, err := c.snapshotLocked(), c.attemptErr
			c.mu.Unlock()
			return snap, err
		}
		c.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

func (c *Controller) run(ctx context.Context, gen, rev uint64, d Draft, cached *types.ResumeData) {
	defer c.wg.Done()

	resume := cached
	if resume == nil || analysis.IsPlaceholder(resume) {
		parsed := c.analyzer.ExtractResume(ctx, d.ResumeText)
		parsed.Normalize()
		resume = &parsed
	}

	result, err := c.analyzer.ScoreResume(ctx, *resume, d.JobTitle, d.JobDescription)
	c.settle(gen, rev, d, *resume, result, err)
}

func (c *Controller) settle(gen, rev uint64, d Draft, resume types.ResumeData, result types.AnalysisResult, err error) {
	c.mu.Lock()
	if gen != c.attempt || c.state != types.StateAnalyzing {
		c.mu.Unlock()
		c.log.Debug().Uint64("attempt", gen).Msg("dropping stale analysis response")
		return
	}
	c.stopAttemptLocked()

	if err != nil {
		msg := analysis.AnalysisFailedMessage
		var analysisErr *analysis.AnalysisError
		if errors.As(err, &analysisErr) && analysisErr.Message != "" {
			msg = analysisErr.Message
		} else {
			analysisErr = &analysis.AnalysisError{Message: msg, Cause: err}
		}
		c.attemptErr = analysisErr
		c.state = types.StateUploading
		c.setBannerLocked(ErrorAnalysis, msg)
		c.log.Warn().Err(err).Uint64("attempt", gen).Msg("analysis failed")
		c.publishLocked()
		return
	}

	result.Normalize()
	if rev == c.draftRev {
		c.parsed = &resume
	}
	c.result = &result
	c.state = types.StateResult

	sess := c.user
	if sess != nil && c.store != nil {
		rec := types.HistoryRecord{
			UserID:         sess.UserID,
			JobTitle:       d.JobTitle,
			JobDescription: d.JobDescription,
			ResumeData:     resume.Clone(),
			AnalysisResult: result.Clone(),
		}
		s := *sess
		c.wg.Add(1)
		go c.save(&s, rec)
	}

	c.log.Info().Uint64("attempt", gen).Int("ats_score", result.ATSScore).Msg("analysis complete")
	c.publishLocked()
}

func (c *Controller) save(sess *types.Session, rec types.HistoryRecord) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := c.store.SaveAnalysis(ctx, sess, &rec); err != nil {
		c.log.Warn().Err(err).Str("user_id", sess.UserID.String()).Msg("failed to save analysis")
	}
}

func (c *Controller) armTimersLocked(gen uint64) {
	c.timers = append(c.timers, time.AfterFunc(c.opts.AnalysisTimeout, func() {
		c.onTimeout(gen)
	}))
	for i, offset := range c.opts.ProgressHints {
		msg := hintMessages[min(i, len(hintMessages)-1)]
		c.timers = append(c.timers, time.AfterFunc(offset, func() {
			c.onHint(gen, msg)
		}))
	}
}

func (c *Controller) onHint(gen uint64, msg string) {
	c.mu.Lock()
	if gen != c.attempt || c.state != types.StateAnalyzing {
		c.mu.Unlock()
		return
	}
	c.progress = msg
	c.publishLocked()
}

func (c *Controller) onTimeout(gen uint64) {
	c.mu.Lock()
	if gen != c.attempt || c.state != types.StateAnalyzing {
		c.mu.Unlock()
		return
	}
	c.abandonAttemptLocked()
	c.attemptErr = &TimeoutError{After: c.opts.AnalysisTimeout}
	c.state = types.StateUploading
	c.setBannerLocked(ErrorTimeout, TimeoutMessage)
	c.log.Warn().Uint64("attempt", gen).Dur("timeout", c.opts.AnalysisTimeout).Msg("analysis timed out")
	c.publishLocked()
}

// abandonAttemptLocked invalidates the current attempt so a late response is
// dropped.
func (c *Controller) abandonAttemptLocked() {
	c.attempt++
	c.stopAttemptLocked()
}

func (c *Controller) stopAttemptLocked() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	if c.cancelAttempt != nil {
		c.cancelAttempt()
		c.cancelAttempt = nil
	}
	c.progress = ""
	c.analyzingSince = time.Time{}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
