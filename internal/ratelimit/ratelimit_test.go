package ratelimit

import (
	"testing"
	"time"
)

// fixedClock returns a limiter whose clock the test controls.
func fixedClock(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestCheckAllowsUpToMax(t *testing.T) {
	l := New(Config{Window: time.Minute, MaxRequests: 3})
	fixedClock(l, time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		res := l.Check("client-a")
		if !res.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		if want := 3 - (i + 1); res.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res := l.Check("client-a")
	if res.Allowed {
		t.Fatal("4th request: expected rejection")
	}
	if res.Remaining != 0 {
		t.Errorf("rejected remaining = %d, want 0", res.Remaining)
	}
	if res.RetryAfter <= 0 {
		t.Errorf("rejected RetryAfter = %v, want > 0", res.RetryAfter)
	}
}

func TestCheckResetsAfterWindow(t *testing.T) {
	l := New(Config{Window: time.Minute, MaxRequests: 1})
	now := fixedClock(l, time.Unix(1000, 0))

	if res := l.Check("k"); !res.Allowed {
		t.Fatal("first request should be allowed")
	}
	if res := l.Check("k"); res.Allowed {
		t.Fatal("second request in window should be rejected")
	}

	*now = now.Add(time.Minute + time.Second)

	res := l.Check("k")
	if !res.Allowed {
		t.Fatal("request after window reset should be allowed")
	}
	if res.Remaining != 0 {
		t.Errorf("remaining after reset = %d, want 0", res.Remaining)
	}
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l := New(Config{Window: time.Minute, MaxRequests: 1})
	fixedClock(l, time.Unix(1000, 0))

	if res := l.Check("a"); !res.Allowed {
		t.Fatal("key a should be allowed")
	}
	if res := l.Check("a"); res.Allowed {
		t.Fatal("key a should be exhausted")
	}
	if res := l.Check("b"); !res.Allowed {
		t.Fatal("key b should have its own window")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestRetryAfterRoundsUp(t *testing.T) {
	l := New(Config{Window: 90*time.Second + 500*time.Millisecond, MaxRequests: 1})
	fixedClock(l, time.Unix(1000, 0))

	l.Check("k")
	res := l.Check("k")
	if res.Allowed {
		t.Fatal("expected rejection")
	}
	if res.RetryAfter != 91*time.Second {
		t.Errorf("RetryAfter = %v, want 91s", res.RetryAfter)
	}
}

func TestDefaults(t *testing.T) {
	l := New(Config{})
	res := l.Check("k")
	if res.Limit != DefaultMaxRequests {
		t.Errorf("Limit = %d, want %d", res.Limit, DefaultMaxRequests)
	}
	if res.Message == "" {
		t.Error("expected a default rejection message")
	}
}

func TestResultAlwaysCarriesHeaderFields(t *testing.T) {
	l := New(Config{Window: time.Minute, MaxRequests: 2})
	fixedClock(l, time.Unix(1000, 0))

	for i := 0; i < 4; i++ {
		res := l.Check("k")
		if res.Limit != 2 {
			t.Errorf("call %d: Limit = %d, want 2", i, res.Limit)
		}
		if res.Reset != 1060 {
			t.Errorf("call %d: Reset = %d, want 1060", i, res.Reset)
		}
	}
}
