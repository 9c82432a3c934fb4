package session

import (
	"context"
	"sync"

	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
)

// Store is the session of one workspace. Subscribers are notified of every
// change, synchronously and in subscription order, outside the store lock.
// Changes are delivered one at a time in the order they were applied.
type Store struct {
	backend  Backend
	resetURL string
	log      zerolog.Logger

	// deliver is held from applying a change until every subscriber has
	// seen it.
	deliver sync.Mutex

	mu       sync.Mutex
	session  *types.Session
	recovery bool
	subs     []subscriber
	nextID   int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewStore creates an empty store. resetURL is where recovery links land.
func NewStore(backend Backend, resetURL string, log zerolog.Logger) *Store {
	return &Store{
		backend:  backend,
		resetURL: resetURL,
		log:      log.With().Str("component", "session").Logger(),
	}
}

// CurrentSession returns a copy of the session, or nil when signed out.
func (s *Store) CurrentSession() *types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

// RecoveryMode reports whether a recovery link was opened and no new
// password has been set yet.
func (s *Store) RecoveryMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovery
}

// SignUp creates an account and signs it in.
func (s *Store) SignUp(ctx context.Context, fullName, email, password string) (*types.Session, error) {
	sess, err := s.backend.SignUp(ctx, fullName, email, password)
	if err != nil {
		return nil, err
	}
	s.set(sess, false, EventSignedIn)
	return copySession(sess), nil
}

// SignIn signs in with email and password.
func (s *Store) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(sess, false, EventSignedIn)
	return copySession(sess), nil
}

// Restore adopts an existing access token, e.g. one presented when a
// workspace is created.
func (s *Store) Restore(ctx context.Context, accessToken string) (*types.Session, error) {
	sess, err := s.backend.VerifyToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	s.set(sess, false, EventSignedIn)
	return copySession(sess), nil
}

// SignOut ends the session. A backend failure is logged; the local session
// is cleared regardless. Signing out while signed out is a no-op.
func (s *Store) SignOut(ctx context.Context) error {
	current := s.CurrentSession()
	if current == nil {
		return nil
	}
	if err := s.backend.SignOut(ctx, current); err != nil {
		s.log.Warn().Err(err).Msg("backend sign-out failed")
	}
	s.set(nil, false, EventSignedOut)
	return nil
}

// RequestPasswordReset sends a recovery link to email.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	return s.backend.RequestPasswordReset(ctx, email, s.resetURL)
}

// BeginRecovery opens a recovery link and enters recovery mode.
func (s *Store) BeginRecovery(ctx context.Context, token string) (*types.Session, error) {
	sess, err := s.backend.VerifyRecovery(ctx, token)
	if err != nil {
		return nil, err
	}
	s.set(sess, true, EventPasswordRecovery)
	return copySession(sess), nil
}

// ConfirmPasswordReset sets the new password while in recovery mode.
func (s *Store) ConfirmPasswordReset(ctx context.Context, newPassword string) error {
	s.mu.Lock()
	sess, recovering := copySession(s.session), s.recovery
	s.mu.Unlock()

	if !recovering || sess == nil {
		return NewAuthError(KindExpiredResetLink, nil)
	}
	if err := s.backend.UpdatePassword(ctx, sess, newPassword); err != nil {
		return err
	}
	s.set(sess, false, EventUserUpdated)
	return nil
}

// Subscribe registers fn for session events. The returned function removes
// it and may be called more than once.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) set(sess *types.Session, recovery bool, kind EventKind) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.session = copySession(sess)
	s.recovery = recovery
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	s.log.Debug().Str("event", string(kind)).Msg("session changed")
	for _, sub := range subs {
		sub.fn(Event{Kind: kind, Session: copySession(sess)})
	}
}

func copySession(s *types.Session) *types.Session {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
