package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow and DefaultMaxRequests mirror the common API-gateway
// convention of 100 requests per 15 minutes.
const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxRequests = 100
)

// Config controls one limiter instance.
type Config struct {
	// Window is the fixed-window length. Counters reset at window boundaries,
	// not continuously.
	Window time.Duration
	// MaxRequests is the number of requests allowed per key per window.
	MaxRequests int
	// Message overrides the rejection message returned to clients.
	Message string
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Message == "" {
		c.Message = "Too many requests, please try again later"
	}
	return c
}

// Result describes the outcome of a single Check call. Limit, Remaining and
// Reset are populated on every call, allowed or not, so callers can always
// emit rate headers.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the unix-seconds timestamp at which the current window ends.
	Reset int64
	// RetryAfter is the time until the window resets, rounded up to whole
	// seconds. Only meaningful when Allowed is false.
	RetryAfter time.Duration
	Message    string
}

type record struct {
	count         int
	windowResetAt time.Time
}

// Limiter is a fixed-window per-key request counter. The check-then-increment
// sequence must be atomic per key, so the whole map is guarded by a mutex.
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	records map[string]*record

	// now is swappable for tests.
	now func() time.Time
}

// New returns a Limiter with zero-value config fields replaced by defaults.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg.withDefaults(),
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Check counts one request for key and reports whether it is allowed within
// the current window.
func (l *Limiter) Check(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	rec, ok := l.records[key]
	if !ok {
		rec = &record{windowResetAt: now.Add(l.cfg.Window)}
		l.records[key] = rec
	}

	if now.After(rec.windowResetAt) {
		rec.count = 0
		rec.windowResetAt = now.Add(l.cfg.Window)
	}

	rec.count++

	res := Result{
		Allowed:   rec.count <= l.cfg.MaxRequests,
		Limit:     l.cfg.MaxRequests,
		Remaining: max(0, l.cfg.MaxRequests-rec.count),
		Reset:     rec.windowResetAt.Unix(),
		Message:   l.cfg.Message,
	}
	if !res.Allowed {
		res.RetryAfter = ceilSeconds(rec.windowResetAt.Sub(now))
	}
	return res
}

// Len reports how many keys currently hold a window record.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func ceilSeconds(d time.Duration) time.Duration {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs * time.Second
}
