package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValidWithKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.SigningKey = []byte("0123456789abcdef0123456789abcdef")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.JWT.Issuer != "URAK-AUTH-SERVICE" || cfg.JWT.Audience != "URAK-USERS" {
		t.Fatalf("unexpected token identity defaults: %+v", cfg.JWT)
	}
	if cfg.JWT.AccessTTL != 30*time.Minute || cfg.JWT.RefreshTTL != 48*time.Hour {
		t.Fatalf("unexpected TTL defaults: %+v", cfg.JWT)
	}
	if cfg.Lockout.MaxFailedAttempts != 5 || cfg.Lockout.LockoutDuration != 30*time.Minute {
		t.Fatalf("unexpected lockout defaults: %+v", cfg.Lockout)
	}
	if cfg.Audit.Retention != 10000 {
		t.Fatalf("unexpected audit retention %d", cfg.Audit.Retention)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := DefaultConfig()
	base.JWT.SigningKey = []byte("0123456789abcdef0123456789abcdef")

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing key", func(c *Config) { c.JWT.SigningKey = nil }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"refresh below access", func(c *Config) { c.JWT.RefreshTTL = time.Minute }},
		{"missing issuer", func(c *Config) { c.JWT.Issuer = "" }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"zero lockout attempts", func(c *Config) { c.Lockout.MaxFailedAttempts = 0 }},
		{"zero retention", func(c *Config) { c.Audit.Retention = 0 }},
		{"enabled sweep without interval", func(c *Config) {
			c.Maintenance.Enabled = true
			c.Maintenance.Interval = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := cloneConfig(base)
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation failure")
			}
		})
	}
}

func TestCloneConfigIsolatesSigningKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.SigningKey = []byte("0123456789abcdef0123456789abcdef")

	clone := cloneConfig(cfg)
	clone.JWT.SigningKey[0] = 'x'

	if cfg.JWT.SigningKey[0] == 'x' {
		t.Fatal("expected clone to own its key bytes")
	}
}
