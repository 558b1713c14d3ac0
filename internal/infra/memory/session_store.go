package memory

import (
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository. It lets a
// respondent reconnect to the same session (page reload, dropped socket) while making
// sure only one connection drives a session at a time.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

type storedSession struct {
	session  *app.Session
	attached bool
}

// NewSessionStore keeps detached sessions for ttl after their last transition. A zero
// ttl keeps them until the process exits.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

// Acquire returns the session for id, creating it when unknown or expired, and attaches
// it to the caller until release is invoked.
func (s *SessionStore) Acquire(sessionID string) (*app.Session, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	stored, ok := s.sessions[sessionID]
	if ok && stored.attached {
		return nil, nil, app.ErrSessionBusy
	}
	if !ok {
		stored = &storedSession{session: app.NewSessionWithClock(sessionID, s.clock)}
		s.sessions[sessionID] = stored
	}
	stored.attached = true

	var once sync.Once
	release := func() {
		once.Do(func() { s.release(sessionID) })
	}
	return stored.session, release, nil
}

// Get returns a session without attaching it.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return stored.session, true
}

// release detaches the session. It stays resumable until the ttl sweep removes it.
func (s *SessionStore) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.sessions[sessionID]; ok {
		stored.attached = false
	}
}

func (s *SessionStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.clock().Add(-s.ttl)
	for id, stored := range s.sessions {
		if !stored.attached && stored.session.LastActive().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
