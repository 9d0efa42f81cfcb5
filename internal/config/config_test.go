package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// TestFromEnv_Defaults verifies development defaults.
func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.SessionBackend != SessionMemory {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("CSRFKey len = %d, want 32", len(cfg.CSRFKey))
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Production() {
		t.Error("default env must not be production")
	}
}

// TestFromEnv_Overrides verifies env values win and trailing slashes are trimmed.
func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"GYM_API_URL":         "https://api.gym.test/api/",
		"GYM_API_TIMEOUT":     "3s",
		"GYM_SESSION_BACKEND": "redis",
		"GYM_LOG_LEVEL":       "debug",
		"GYM_CSRF_KEY":        strings.Repeat("ab", 32),
		"GYM_RATE_LIMIT":      "50",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.APIURL != "https://api.gym.test/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APITimeout != 3*time.Second || cfg.SessionBackend != SessionRedis || cfg.LogLevel != slog.LevelDebug || cfg.RateLimit != 50 {
		t.Errorf("cfg = %+v", cfg)
	}
}

// TestFromEnv_Errors covers rejected configurations.
func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"bad csrf key", map[string]string{"GYM_CSRF_KEY": "xyz"}, ErrInvalidCSRFKey},
		{"production without csrf key", map[string]string{"GYM_ENV": "production"}, ErrCSRFKeyRequired},
		{"unknown session backend", map[string]string{"GYM_SESSION_BACKEND": "memcached"}, ErrUnknownSessionDB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			if !errors.Is(err, tt.want) {
				t.Errorf("FromEnv() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestFromEnv_BadTimeout verifies an unparseable timeout is rejected.
func TestFromEnv_BadTimeout(t *testing.T) {
	if _, err := FromEnv(envMap(map[string]string{"GYM_API_TIMEOUT": "soon"})); err == nil {
		t.Error("expected error for unparseable timeout")
	}
}
