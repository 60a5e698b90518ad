package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if Duration(cfg.Auth.SessionTTL) != time.Hour {
		t.Errorf("session ttl = %s, want 1h", cfg.Auth.SessionTTL)
	}
	if Duration(cfg.RateLimit.Window) != 15*time.Minute {
		t.Errorf("rate window = %s, want 15m", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.MaxRequests != 100 {
		t.Errorf("max requests = %d, want 100", cfg.RateLimit.MaxRequests)
	}
	if cfg.Log.Dir != "./logs" {
		t.Errorf("log dir = %q, want ./logs", cfg.Log.Dir)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
  request_timeout: 10s
rate_limit:
  window: 1m
  max_requests: 5
users:
  - id: "1"
    username: admin
    password_hash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
    role: admin
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.RateLimit.MaxRequests != 5 {
		t.Errorf("max requests = %d, want 5", cfg.RateLimit.MaxRequests)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Username != "admin" {
		t.Errorf("users = %+v", cfg.Users)
	}
	// Defaults still fill unset sections.
	if Duration(cfg.Auth.SessionTTL) != time.Hour {
		t.Errorf("session ttl = %s, want default 1h", cfg.Auth.SessionTTL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APIGUARD_SERVER__PORT", "7000")
	t.Setenv("APIGUARD_RATE_LIMIT__MAX_REQUESTS", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.RateLimit.MaxRequests != 2 {
		t.Errorf("max requests = %d, want 2", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("APIGUARD_AUTH__SESSION_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("APIGUARD_SERVER__PORT", "-1")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
