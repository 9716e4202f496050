package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolate points CONFIG_PATH at a missing file and runs from a temp dir so a
// developer's config.yaml never leaks into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("MEDIACAT_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "mediacat_session" {
		t.Errorf("cookie name = %q", cfg.Session.CookieName)
	}
	if cfg.RateLimit.Window != 15*time.Minute || cfg.RateLimit.Auth != 10 || cfg.RateLimit.MediaWrite != 30 {
		t.Errorf("rate limits = %+v", cfg.RateLimit)
	}
	if cfg.Session.Revocation != "none" {
		t.Errorf("revocation = %q", cfg.Session.Revocation)
	}
}

func TestLoadLegacyEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_EXPIRES_IN", "2d")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("COOKIE_NAME", "sid")
	t.Setenv("CORS_ORIGIN", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Session.TTL != 48*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("window = %v", cfg.RateLimit.Window)
	}
	if cfg.Session.CookieName != "sid" {
		t.Errorf("cookie = %q", cfg.Session.CookieName)
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
session:
  secret: "` + testSecret + `"
  ttl: 2h
rate_limit:
  auth: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MEDIACAT_RATE_LIMIT_AUTH", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want file value", cfg.Server.Port)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.RateLimit.Auth != 4 {
		t.Errorf("auth limit = %d, want env override", cfg.RateLimit.Auth)
	}
	if cfg.RateLimit.Users != 20 {
		t.Errorf("users limit = %d, want default", cfg.RateLimit.Users)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.Session.Secret = "short" }, "session.secret"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"half tls", func(c *Config) { c.Server.TLSCertFile = "cert.pem" }, "tls_key_file"},
		{"unknown revocation", func(c *Config) { c.Session.Revocation = "memcached" }, "session.revocation"},
		{"redis without addr", func(c *Config) { c.Session.Revocation = "redis"; c.Redis.Addr = "" }, "redis.addr"},
		{"zero limit", func(c *Config) { c.RateLimit.Stats = 0 }, "rate_limit.stats"},
		{"zero limit when disabled", func(c *Config) { c.RateLimit.Stats = 0; c.RateLimit.Disabled = true }, ""},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Session.Secret = testSecret
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	if d, ok := parseDays("1d"); !ok || d != 24*time.Hour {
		t.Errorf("parseDays(1d) = %v, %v", d, ok)
	}
	for _, in := range []string{"12h", "d", "-1d", "xd"} {
		if _, ok := parseDays(in); ok {
			t.Errorf("parseDays(%q) should not parse", in)
		}
	}
}
