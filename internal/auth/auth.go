// Package auth implements token-session authentication: login against a seed
// set of principals, bearer-token authentication with lazy session expiry,
// and role-based authorization.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for the authentication failure classes. The HTTP layer maps
// these onto status codes and response envelopes.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("missing authentication token")
	ErrInvalidToken       = errors.New("invalid authentication token")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnauthenticated    = errors.New("authentication required")
)

// ForbiddenError reports a role mismatch, carrying both the roles the route
// requires and the role the principal actually has.
type ForbiddenError struct {
	Required []string
	Actual   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("requires one of roles [%s], you have %q",
		strings.Join(e.Required, ", "), e.Actual)
}

// Principal is the authenticated identity associated with a request.
// Principals are immutable reference data; the pipeline never creates or
// mutates them.
type Principal struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// Authenticator owns the principal set and the session store. It is built
// once at startup and shared by all requests; all state it holds is
// explicitly owned here rather than in package-level globals.
type Authenticator struct {
	byUsername map[string]Principal
	byID       map[string]Principal
	sessions   *SessionStore

	// dummyHash keeps login timing flat for unknown usernames.
	dummyHash string
}

// New builds an Authenticator over the given principals and session store.
func New(principals []Principal, sessions *SessionStore) *Authenticator {
	a := &Authenticator{
		byUsername: make(map[string]Principal, len(principals)),
		byID:       make(map[string]Principal, len(principals)),
		sessions:   sessions,
	}
	for _, p := range principals {
		a.byUsername[p.Username] = p
		a.byID[p.ID] = p
	}
	if h, err := HashPassword("placeholder-nobody-knows"); err == nil {
		a.dummyHash = h
	}
	return a
}

// Login verifies a username/credential pair and mints an active session.
// It never reveals whether the username or the password was the wrong half.
func (a *Authenticator) Login(username, password string) (Session, Principal, error) {
	p, ok := a.byUsername[username]
	if !ok {
		// Burn a comparison anyway so lookup misses cost the same as
		// password mismatches.
		_, _ = VerifyPassword(a.dummyHash, password)
		return Session{}, Principal{}, ErrInvalidCredentials
	}

	match, err := VerifyPassword(p.PasswordHash, password)
	if err != nil || !match {
		return Session{}, Principal{}, ErrInvalidCredentials
	}

	return a.sessions.Create(p.ID, p.Role), p, nil
}

// Authenticate resolves a bearer token to its principal. Expired sessions
// are evicted on detection.
func (a *Authenticator) Authenticate(token string) (Principal, Session, error) {
	if token == "" {
		return Principal{}, Session{}, ErrMissingToken
	}

	sess, ok, expired := a.sessions.Get(token)
	if expired {
		return Principal{}, Session{}, ErrSessionExpired
	}
	if !ok {
		return Principal{}, Session{}, ErrInvalidToken
	}

	p, ok := a.byID[sess.PrincipalID]
	if !ok {
		// Principal removed while the session was live.
		a.sessions.Delete(token)
		return Principal{}, Session{}, ErrInvalidToken
	}
	return p, sess, nil
}

// Authorize checks the principal's role against the required set. An empty
// required set admits any authenticated principal.
func (a *Authenticator) Authorize(p Principal, required []string) error {
	if p.ID == "" {
		return ErrUnauthenticated
	}
	if len(required) == 0 {
		return nil
	}
	if !slices.Contains(required, p.Role) {
		return &ForbiddenError{Required: required, Actual: p.Role}
	}
	return nil
}

// Logout revokes the session behind token. Revoking an absent or already
// revoked token is a no-op.
func (a *Authenticator) Logout(token string) {
	if token == "" {
		return
	}
	a.sessions.Delete(token)
}

// Sessions exposes the underlying store, mainly for wiring and tests.
func (a *Authenticator) Sessions() *SessionStore { return a.sessions }
