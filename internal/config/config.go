package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Session   SessionConfig   `koanf:"session"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Authz     AuthzConfig     `koanf:"authz"`
	Redis     RedisConfig     `koanf:"redis"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Sentry    SentryConfig    `koanf:"sentry"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	StaticDir       string        `koanf:"static_dir"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type SessionConfig struct {
	Secret     string        `koanf:"secret"`
	TTL        time.Duration `koanf:"ttl"`
	CookieName string        `koanf:"cookie_name"`
	// CookieSecure forces the Secure attribute even when TLS terminates upstream.
	CookieSecure bool `koanf:"cookie_secure"`
	// Revocation is "none" or "redis".
	Revocation string `koanf:"revocation"`
}

type RateLimitConfig struct {
	Disabled   bool          `koanf:"disabled"`
	Window     time.Duration `koanf:"window"`
	Auth       int           `koanf:"auth"`
	Users      int           `koanf:"users"`
	Stats      int           `koanf:"stats"`
	MediaWrite int           `koanf:"media_write"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type AuthzConfig struct {
	PolicyPath string `koanf:"policy_path"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
	// CollectSchedule is a cron spec for refreshing catalog size gauges.
	CollectSchedule string `koanf:"collect_schedule"`
}

type SentryConfig struct {
	DSN string `koanf:"dsn"`
}

const minSecretLength = 32

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, errors.New("database.max_open_conns must be positive"))
	}
	if len(c.Session.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("session.secret must be at least %d bytes", minSecretLength))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	switch c.Session.Revocation {
	case "none":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when session.revocation is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.revocation must be none or redis, got %q", c.Session.Revocation))
	}
	if !c.RateLimit.Disabled {
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rate_limit.window must be positive"))
		}
		for name, n := range map[string]int{
			"auth":        c.RateLimit.Auth,
			"users":       c.RateLimit.Users,
			"stats":       c.RateLimit.Stats,
			"media_write": c.RateLimit.MediaWrite,
		} {
			if n < 1 {
				errs = append(errs, fmt.Errorf("rate_limit.%s must be positive", name))
			}
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
