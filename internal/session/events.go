package session

import "github.com/jonathan/resume-analyzer/internal/types"

// EventKind names a change of the session.
type EventKind string

const (
	EventSignedIn         EventKind = "SIGNED_IN"
	EventSignedOut        EventKind = "SIGNED_OUT"
	EventPasswordRecovery EventKind = "PASSWORD_RECOVERY"
	EventUserUpdated      EventKind = "USER_UPDATED"
)

// Event is delivered to subscribers after the store changes. Session is a
// copy and nil after sign-out.
type Event struct {
	Kind    EventKind
	Session *types.Session
}
