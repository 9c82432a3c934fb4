// Package controller implements the view-state machine of one analyzer
// workspace. It owns the draft, the parsed résumé, the analysis result and
// the transient banner, and publishes a Snapshot after every transition.
//
// States: Idle → Uploading → Analyzing → Result ⇄ ViewingResume / Roadmap,
// with History reachable when signed in and Idle reachable from anywhere
// through Reset. Result, ViewingResume and Roadmap require a held result.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// DefaultAnalysisTimeout is the watchdog deadline of an attempt.
const DefaultAnalysisTimeout = 60 * time.Second

// DefaultProgressHints are the offsets at which progress hints appear.
var DefaultProgressHints = []time.Duration{15 * time.Second, 35 * time.Second}

var hintMessages = []string{
	"The AI engine is deep-parsing your experience...",
	"Synthesizing your career roadmap. Almost done...",
}

const saveTimeout = 30 * time.Second

// Analyzer is the AI client.
type Analyzer interface {
	ExtractResume(ctx context.Context, raw string) types.ResumeData
	ScoreResume(ctx context.Context, resume types.ResumeData, jobTitle, jobDescription string) (types.AnalysisResult, error)
}

// Sessions is the session store the controller follows.
type Sessions interface {
	CurrentSession() *types.Session
	RecoveryMode() bool
	Subscribe(fn func(session.Event)) (unsubscribe func())
}

// Deps are the collaborators of a Controller. Persistence may be nil.
type Deps struct {
	Analyzer    Analyzer
	Sessions    Sessions
	Persistence persistence.Client
	Logger      zerolog.Logger
}

// Options tune timing and background work.
type Options struct {
	AnalysisTimeout    time.Duration
	ProgressHints      []time.Duration
	PrefetchExtraction bool
}

// Controller is the state machine of one workspace. It is safe for
// concurrent use.
type Controller struct {
	analyzer Analyzer
	store    persistence.Client
	log      zerolog.Logger
	opts     Options
	now      func() time.Time

	unsubscribeSession func()
	wg                 sync.WaitGroup

	mu             sync.Mutex
	closed         bool
	state          types.AppState
	draft          Draft
	draftRev       uint64
	parsed         *types.ResumeData
	result         *types.AnalysisResult
	history        []types.HistoryRecord
	banner         string
	bannerKind     ErrorKind
	progress       string
	user           *types.Session
	recovery       bool
	analyzingSince time.Time
	version        uint64

	attempt        uint64
	attemptErr     error
	cancelAttempt  context.CancelFunc
	timers         []*time.Timer
	cancelPrefetch context.CancelFunc

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// New creates a controller in Idle and subscribes it to the session store.
func New(deps Deps, opts Options) *Controller {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if opts.ProgressHints == nil {
		opts.ProgressHints = DefaultProgressHints
	}

	c := &Controller{
		analyzer: deps.Analyzer,
		store:    deps.Persistence,
		log:      deps.Logger.With().Str("component", "controller").Logger(),
		opts:     opts,
		now:      time.Now,
		state:    types.StateIdle,
	}

	if deps.Sessions != nil {
		c.user = deps.Sessions.CurrentSession()
		c.recovery = deps.Sessions.RecoveryMode()
		c.unsubscribeSession = deps.Sessions.Subscribe(c.onSessionEvent)
	}
	return c
}

// Close unsubscribes from the session store, cancels any in-flight work and
// waits for background goroutines. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.attempt++
	c.stopAttemptLocked()
	if c.cancelPrefetch != nil {
		c.cancelPrefetch()
		c.cancelPrefetch = nil
	}
	c.subs = nil
	c.mu.Unlock()

	if c.unsubscribeSession != nil {
		c.unsubscribeSession()
	}
	c.wg.Wait()
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current state.
func (c *Controller) State() types.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for snapshots published after each change.
// Listeners run outside the controller lock. The returned function removes
// fn and may be called more than once.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, sub := range c.subs {
				if sub.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubmitResume replaces the résumé text and drops the cached parse. With
// prefetch enabled a best-effort extraction starts in the background.
func (c *Controller) SubmitResume(text string) {
	c.mu.Lock()
	c.draft.ResumeText = text
	c.draftRev++
	c.parsed = nil
	if c.cancelPrefetch != nil {
		c.cancelPrefetch()
		c.cancelPrefetch = nil
	}
	if c.opts.PrefetchExtraction && !c.closed && strings.TrimSpace(text) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.AnalysisTimeout)
		c.cancelPrefetch = cancel
		c.wg.Add(1)
		go c.prefetch(ctx, c.draftRev, text)
	}
	c.publishLocked()
}

// SetJobTitle sets the target job title.
func (c *Controller) SetJobTitle(title string) {
	c.mu.Lock()
	c.draft.JobTitle = title
	c.publishLocked()
}

// SetJobDescription sets the target job description.
func (c *Controller) SetJobDescription(description string) {
	c.mu.Lock()
	c.draft.JobDescription = description
	c.publishLocked()
}

func (c *Controller) prefetch(ctx context.Context, rev uint64, text string) {
	defer c.wg.Done()

	parsed := c.analyzer.ExtractResume(ctx, text)

	c.mu.Lock()
	if rev != c.draftRev || c.parsed != nil || c.closed {
		c.mu.Unlock()
		c.log.Debug().Uint64("revision", rev).Msg("discarding stale background parse")
		return
	}
	parsed.Normalize()
	c.parsed = &parsed
	c.publishLocked()
}

// publishLocked bumps the version and notifies subscribers. It must be
// called with c.mu held and releases it.
func (c *Controller) publishLocked() {
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.version++
	snap := c.snapshotLocked()
	subs := append([]subscriber(nil), c.subs...)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (c *Controller) setBannerLocked(kind ErrorKind, msg string) {
	c.banner = msg
	c.bannerKind = kind
}

func (c *Controller) clearBannerLocked() {
	c.banner = ""
	c.bannerKind = ""
}
