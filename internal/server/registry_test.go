package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() *controller.Controller {
	return controller.New(controller.Deps{Analyzer: &fakeAI{}, Logger: zerolog.Nop()}, controller.Options{})
}

func isClosed(ws *Workspace) bool {
	select {
	case <-ws.Done():
		return true
	default:
		return false
	}
}

func TestRegistry_AddGetRemove(t *testing.T) {
	r := NewRegistry(time.Minute, zerolog.Nop())

	ws := r.Add(newTestController(), nil)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(ws.ID)
	require.NoError(t, err)
	assert.Same(t, ws, got)

	_, err = r.Get(uuid.New())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)

	require.NoError(t, r.Remove(ws.ID))
	assert.True(t, isClosed(ws))
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Remove(ws.ID), ErrWorkspaceNotFound)
}

func TestRegistry_EvictIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(10*time.Minute, zerolog.Nop())
	r.now = func() time.Time { return now }

	idle := r.Add(newTestController(), nil)
	now = now.Add(8 * time.Minute)
	active := r.Add(newTestController(), nil)

	now = now.Add(5 * time.Minute)
	_, err := r.Get(active.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, r.EvictIdle())
	assert.True(t, isClosed(idle))
	assert.False(t, isClosed(active))

	_, err = r.Get(idle.ID)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestRegistry_EvictIdleDisabled(t *testing.T) {
	r := NewRegistry(0, zerolog.Nop())
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Add(newTestController(), nil)
	now = now.Add(24 * time.Hour)

	assert.Zero(t, r.EvictIdle())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistry(time.Minute, zerolog.Nop())
	workspaces := []*Workspace{
		r.Add(newTestController(), nil),
		r.Add(newTestController(), nil),
	}

	r.CloseAll()

	assert.Zero(t, r.Len())
	for _, ws := range workspaces {
		assert.True(t, isClosed(ws))
	}
}
