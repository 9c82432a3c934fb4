package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonathan/resume-analyzer/internal/controller"
)

const keepAliveInterval = 15 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends a keep-alive comment line.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// snapshotFeed keeps the newest snapshot published by a controller.
// Listeners may run concurrently and out of order, so older versions are
// discarded on arrival.
type snapshotFeed struct {
	mu     sync.Mutex
	latest controller.Snapshot
	has    bool
	notify chan struct{}
}

func newSnapshotFeed() *snapshotFeed {
	return &snapshotFeed{notify: make(chan struct{}, 1)}
}

func (f *snapshotFeed) push(snap controller.Snapshot) {
	f.mu.Lock()
	if !f.has || snap.Version > f.latest.Version {
		f.latest = snap
		f.has = true
	}
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// next returns the newest snapshot if it is newer than version.
func (f *snapshotFeed) next(version uint64) (controller.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.has && f.latest.Version > version {
		return f.latest, true
	}
	return controller.Snapshot{}, false
}

// streamSnapshots writes "snapshot" events until ctx ends or the workspace
// closes, in which case a final "close" event is sent. Each keep-alive marks
// the workspace as seen, so an open stream holds off idle eviction.
func streamSnapshots(ctx context.Context, sse *SSEWriter, ws *Workspace, keepAlive time.Duration) error {
	feed := newSnapshotFeed()
	unsubscribe := ws.Controller.Subscribe(feed.push)
	defer unsubscribe()

	current := ws.Controller.Snapshot()
	if err := sse.WriteEvent("snapshot", current); err != nil {
		return err
	}
	sent := current.Version

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ws.Done():
			return sse.WriteEvent("close", map[string]string{"id": ws.ID.String()})
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return err
			}
			ws.markSeen()
		case <-feed.notify:
			snap, ok := feed.next(sent)
			if !ok {
				continue
			}
			if err := sse.WriteEvent("snapshot", snap); err != nil {
				return err
			}
			sent = snap.Version
		}
	}
}
