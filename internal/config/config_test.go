package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.MessageTTL != 5*time.Second {
		t.Errorf("MessageTTL = %v, want 5s", cfg.MessageTTL)
	}
	if cfg.UpstreamTimeout != 0 {
		t.Errorf("UpstreamTimeout = %v, want 0", cfg.UpstreamTimeout)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SIGNUPDESK_API_BASE_URL":     "https://school.example.edu/",
		"SIGNUPDESK_MESSAGE_TTL":      "2s",
		"SIGNUPDESK_UPSTREAM_TIMEOUT": "15s",
		"SIGNUPDESK_CSRF_KEY":         strings.Repeat("ab", 32),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://school.example.edu" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.MessageTTL != 2*time.Second || cfg.UpstreamTimeout != 15*time.Second {
		t.Errorf("durations not parsed: %v %v", cfg.MessageTTL, cfg.UpstreamTimeout)
	}
	key, err := cfg.CSRFKeyBytes()
	if err != nil || len(key) != 32 {
		t.Errorf("CSRFKeyBytes() = %d bytes, err %v", len(key), err)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr error
	}{
		{
			name:    "short csrf key",
			environ: map[string]string{"SIGNUPDESK_CSRF_KEY": "abcd"},
			wantErr: ErrBadCSRFKey,
		},
		{
			name:    "production without csrf key",
			environ: map[string]string{"SIGNUPDESK_ENV": "production"},
			wantErr: ErrMissingCSRFKey,
		},
		{
			name:    "negative rate limit",
			environ: map[string]string{"SIGNUPDESK_RATE_LIMIT": "-1"},
			wantErr: ErrBadRateLimit,
		},
		{
			name:    "zero message ttl",
			environ: map[string]string{"SIGNUPDESK_MESSAGE_TTL": "0s"},
			wantErr: ErrBadMessageTTL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadFrom() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCSRFKeyBytes_Random(t *testing.T) {
	cfg := Config{}
	a, err := cfg.CSRFKeyBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := cfg.CSRFKeyBytes()
	if len(a) != 32 || string(a) == string(b) {
		t.Error("expected two distinct 32-byte random keys")
	}
}

func TestCSRFOrigins(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SIGNUPDESK_LISTEN_ADDR":     "127.0.0.1:9090",
		"SIGNUPDESK_TRUSTED_ORIGINS": "desk.school.lan:443, ,other:80",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(cfg.CSRFOrigins(), ",")
	want := "127.0.0.1:9090,localhost:9090,desk.school.lan:443,other:80"
	if got != want {
		t.Errorf("CSRFOrigins() = %q, want %q", got, want)
	}
}
