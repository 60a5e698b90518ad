package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = time.Hour

// Session binds an opaque token to an authenticated principal for a bounded
// time. A token resolves to at most one session.
type Session struct {
	Token       string    `json:"token"`
	PrincipalID string    `json:"principalId"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SessionStore is an in-memory token to session mapping with lazy expiry.
// Expired sessions are evicted the first time a read detects them.
type SessionStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]Session

	// now is swappable for tests.
	now func() time.Time
}

// NewSessionStore returns a store with the given TTL, or DefaultSessionTTL
// when ttl is zero or negative.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create mints an unguessable token and stores an active session for the
// principal.
func (s *SessionStore) Create(principalID, role string) Session {
	sess := Session{
		Token:       uuid.New().String(),
		PrincipalID: principalID,
		Role:        role,
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Get resolves a token. The second return reports whether an active session
// exists; an expired session is evicted and reported as expired via the third
// return.
func (s *SessionStore) Get(token string) (Session, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false, false
	}
	if s.now().Sub(sess.CreatedAt) > s.ttl {
		delete(s.sessions, token)
		return Session{}, false, true
	}
	return sess, true, false
}

// Delete removes a session if present. Deleting an absent token is not an
// error; logout is idempotent.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len reports the number of stored sessions, including ones that have
// expired but not yet been read.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
