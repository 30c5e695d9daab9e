package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvProduction is the SIGNUPDESK_ENV value that enables strict checks.
const EnvProduction = "production"

// Config is the runtime configuration, read from SIGNUPDESK_* environment variables.
type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL"     envDefault:"http://localhost:8000"`
	ListenAddr      string        `env:"LISTEN_ADDR"      envDefault:"127.0.0.1:8080"`
	StorePath       string        `env:"STORE_PATH"       envDefault:"signupdesk.db"`
	CSRFKey         string        `env:"CSRF_KEY"`
	Env             string        `env:"ENV"              envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"text"`
	MessageTTL      time.Duration `env:"MESSAGE_TTL"      envDefault:"5s"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"0s"`
	SlowQueryMs     int           `env:"SLOW_QUERY_MS"    envDefault:"50"`
	SlowRequestMs   int           `env:"SLOW_REQUEST_MS"  envDefault:"200"`
	OTELEndpoint    string        `env:"OTEL_ENDPOINT"`
	RateLimit       int           `env:"RATE_LIMIT"       envDefault:"10"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS"  envSeparator:","`
}

var (
	ErrEmptyAPIBaseURL = errors.New("SIGNUPDESK_API_BASE_URL cannot be empty")
	ErrBadCSRFKey      = errors.New("SIGNUPDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrMissingCSRFKey  = errors.New("SIGNUPDESK_CSRF_KEY is required in production")
	ErrBadMessageTTL   = errors.New("SIGNUPDESK_MESSAGE_TTL must be positive")
	ErrBadRateLimit    = errors.New("SIGNUPDESK_RATE_LIMIT cannot be negative")
)

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	return parse(env.Options{Prefix: "SIGNUPDESK_"})
}

// LoadFrom parses the given environment map; used by tests.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: "SIGNUPDESK_", Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrEmptyAPIBaseURL
	}
	if c.MessageTTL <= 0 {
		return ErrBadMessageTTL
	}
	if c.RateLimit < 0 {
		return ErrBadRateLimit
	}
	if c.CSRFKey != "" {
		if key, err := hex.DecodeString(c.CSRFKey); err != nil || len(key) != 32 {
			return ErrBadCSRFKey
		}
	} else if c.IsProduction() {
		return ErrMissingCSRFKey
	}
	return nil
}

// IsProduction reports whether strict production checks apply.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFOrigins returns the origins allowed to post forms: the listen address
// (and its localhost alias) plus any configured extras.
func (c Config) CSRFOrigins() []string {
	origins := []string{c.ListenAddr}
	if port, ok := strings.CutPrefix(c.ListenAddr, "127.0.0.1:"); ok {
		origins = append(origins, "localhost:"+port)
	}
	for _, o := range c.TrustedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// CSRFKeyBytes returns the configured CSRF key, or a random one per start.
// Validate has already rejected malformed keys.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey != "" {
		return hex.DecodeString(c.CSRFKey)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("using random CSRF key (forms won't survive restart); set SIGNUPDESK_CSRF_KEY to pin it")
	return key, nil
}

// NewLogger builds the slog logger described by LogLevel and LogFormat.
func (c Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
