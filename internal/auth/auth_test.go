package auth

import (
	"errors"
	"testing"
	"time"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return h
}

func testAuthenticator(t *testing.T, ttl time.Duration) (*Authenticator, *time.Time) {
	t.Helper()

	store := NewSessionStore(ttl)
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	a := New([]Principal{
		{ID: "1", Username: "admin", PasswordHash: mustHash(t, "admin123"), Role: "admin"},
		{ID: "2", Username: "somchai", PasswordHash: mustHash(t, "user1234"), Role: "user"},
	}, store)

	return a, &now
}

func TestLoginAuthenticateRoundTrip(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	sess, p, err := a.Login("admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a minted token")
	}
	if p.ID != "1" || p.Role != "admin" {
		t.Fatalf("principal = %+v", p)
	}

	got, gotSess, err := a.Authenticate(sess.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("round-trip principal id = %q, want %q", got.ID, p.ID)
	}
	if gotSess.Token != sess.Token {
		t.Errorf("session token mismatch")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	// Wrong password and unknown username fail identically.
	if _, _, err := a.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := a.Login("nobody", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateMissingAndInvalidToken(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	if _, _, err := a.Authenticate(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("empty token: err = %v, want ErrMissingToken", err)
	}
	if _, _, err := a.Authenticate("no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token: err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionExpiryBoundary(t *testing.T) {
	ttl := time.Hour
	a, now := testAuthenticator(t, ttl)

	sess, _, err := a.Login("admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	*now = sess.CreatedAt.Add(ttl - time.Millisecond)
	if _, _, err := a.Authenticate(sess.Token); err != nil {
		t.Errorf("ttl-1ms: err = %v, want success", err)
	}

	*now = sess.CreatedAt.Add(ttl + time.Millisecond)
	if _, _, err := a.Authenticate(sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("ttl+1ms: err = %v, want ErrSessionExpired", err)
	}

	// Detection evicts the record, so the next read sees an unknown token.
	if _, _, err := a.Authenticate(sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("after eviction: err = %v, want ErrInvalidToken", err)
	}
	if a.Sessions().Len() != 0 {
		t.Errorf("expired session not evicted, store len = %d", a.Sessions().Len())
	}
}

func TestAuthorize(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	_, admin, err := a.Login("admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := a.Authorize(admin, []string{"admin"}); err != nil {
		t.Errorf("admin role: err = %v, want allow", err)
	}
	if err := a.Authorize(admin, nil); err != nil {
		t.Errorf("empty required set: err = %v, want allow", err)
	}

	err = a.Authorize(admin, []string{"guest"})
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("guest required: err = %v, want ForbiddenError", err)
	}
	if forbidden.Actual != "admin" {
		t.Errorf("Actual = %q, want admin", forbidden.Actual)
	}
	if len(forbidden.Required) != 1 || forbidden.Required[0] != "guest" {
		t.Errorf("Required = %v, want [guest]", forbidden.Required)
	}

	if err := a.Authorize(Principal{}, []string{"admin"}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("no principal: err = %v, want ErrUnauthenticated", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	sess, _, err := a.Login("somchai", "user1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	a.Logout(sess.Token)
	if _, _, err := a.Authenticate(sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("after logout: err = %v, want ErrInvalidToken", err)
	}

	// Second logout of the same token, and logout of garbage, are no-ops.
	a.Logout(sess.Token)
	a.Logout("never-existed")
	a.Logout("")
}

func TestTokensAreUnique(t *testing.T) {
	a, _ := testAuthenticator(t, time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, _, err := a.Login("admin", "admin123")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if seen[sess.Token] {
			t.Fatalf("duplicate token minted: %s", sess.Token)
		}
		seen[sess.Token] = true
	}
}
