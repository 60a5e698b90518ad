package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Users     []UserConfig    `koanf:"users"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RequestTimeout is a duration string like "30s".
	RequestTimeout string `koanf:"request_timeout"`
}

type AuthConfig struct {
	// SessionTTL is a duration string like "1h".
	SessionTTL string `koanf:"session_ttl"`
}

type RateLimitConfig struct {
	// Window is a duration string like "15m".
	Window      string `koanf:"window"`
	MaxRequests int    `koanf:"max_requests"`
	Message     string `koanf:"message"`
}

type LogConfig struct {
	Dir string `koanf:"dir"`
	// SlowThreshold is a duration string like "1s".
	SlowThreshold string `koanf:"slow_threshold"`
}

// UserConfig seeds one principal. PasswordHash is an argon2id PHC string;
// plaintext passwords are never configured.
type UserConfig struct {
	ID           string `koanf:"id"`
	Username     string `koanf:"username"`
	PasswordHash string `koanf:"password_hash"`
	Role         string `koanf:"role"`
}

// Load reads configuration from an optional YAML file, then overlays
// environment variables prefixed APIGUARD_ (double underscore separates
// nesting: APIGUARD_SERVER__PORT), then fills defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("APIGUARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "APIGUARD_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"server.port":             8080,
		"server.request_timeout":  "30s",
		"auth.session_ttl":        "1h",
		"rate_limit.window":       "15m",
		"rate_limit.max_requests": 100,
		"log.dir":                 "./logs",
		"log.slow_threshold":      "1s",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}
}

func (c *Config) validate() error {
	for _, pair := range []struct{ name, val string }{
		{"server.request_timeout", c.Server.RequestTimeout},
		{"auth.session_ttl", c.Auth.SessionTTL},
		{"rate_limit.window", c.RateLimit.Window},
		{"log.slow_threshold", c.Log.SlowThreshold},
	} {
		if _, err := time.ParseDuration(pair.val); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", pair.name, err)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// Duration parses a validated duration field. It panics on values that
// validate() already accepted, so callers can use it directly.
func Duration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config duration %q: %v", s, err))
	}
	return d
}
