package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/rs/zerolog"
)

// Workspace is one analyzer session: a controller and the session store it
// follows.
type Workspace struct {
	ID         uuid.UUID
	Controller *controller.Controller
	Sessions   *session.Store
	CreatedAt  time.Time

	clock      func() time.Time
	lastSeen   atomic.Int64 // unix nanos
	speechBusy atomic.Bool
	closed     chan struct{}
	closeOnce  sync.Once
}

func (ws *Workspace) touch(now time.Time) {
	ws.lastSeen.Store(now.UnixNano())
}

// markSeen records activity that does not go through Registry.Get, such as
// an open event stream.
func (ws *Workspace) markSeen() {
	ws.touch(ws.clock())
}

// LastSeen returns the time the workspace was last used.
func (ws *Workspace) LastSeen() time.Time {
	return time.Unix(0, ws.lastSeen.Load())
}

// Done is closed when the workspace is closed.
func (ws *Workspace) Done() <-chan struct{} {
	return ws.closed
}

func (ws *Workspace) close() {
	ws.closeOnce.Do(func() {
		ws.Controller.Close()
		close(ws.closed)
	})
}

// Registry holds the live workspaces.
type Registry struct {
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time

	mu         sync.Mutex
	workspaces map[uuid.UUID]*Workspace
}

// NewRegistry creates a registry whose workspaces expire after ttl without
// requests or event-stream traffic. A ttl of zero disables expiry.
func NewRegistry(ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		ttl:        ttl,
		log:        log.With().Str("component", "registry").Logger(),
		now:        time.Now,
		workspaces: make(map[uuid.UUID]*Workspace),
	}
}

// Add registers a workspace built from ctrl and store.
func (r *Registry) Add(ctrl *controller.Controller, store *session.Store) *Workspace {
	now := r.now()
	ws := &Workspace{
		ID:         uuid.New(),
		Controller: ctrl,
		Sessions:   store,
		CreatedAt:  now,
		clock:      r.now,
		closed:     make(chan struct{}),
	}
	ws.touch(now)

	r.mu.Lock()
	r.workspaces[ws.ID] = ws
	r.mu.Unlock()

	r.log.Debug().Str("workspace_id", ws.ID.String()).Msg("workspace created")
	return ws
}

// Get returns the workspace and marks it used.
func (r *Registry) Get(id uuid.UUID) (*Workspace, error) {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	ws.touch(r.now())
	return ws, nil
}

// Remove closes and forgets a workspace.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()
	if !ok {
		return ErrWorkspaceNotFound
	}
	ws.close()
	r.log.Debug().Str("workspace_id", id.String()).Msg("workspace closed")
	return nil
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// EvictIdle closes workspaces unused for longer than the ttl and returns how
// many were evicted.
func (r *Registry) EvictIdle() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	var idle []*Workspace
	r.mu.Lock()
	for id, ws := range r.workspaces {
		if ws.LastSeen().Before(cutoff) {
			idle = append(idle, ws)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range idle {
		ws.close()
	}
	if len(idle) > 0 {
		r.log.Info().Int("evicted", len(idle)).Msg("evicted idle workspaces")
	}
	return len(idle)
}

// Janitor evicts idle workspaces every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

// CloseAll closes every workspace.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		all = append(all, ws)
	}
	r.workspaces = make(map[uuid.UUID]*Workspace)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, ws := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws.close()
		}()
	}
	wg.Wait()
}
