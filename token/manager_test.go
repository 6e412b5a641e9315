package token

import (
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		Issuer:     "URAK-AUTH-SERVICE",
		Audience:   "URAK-USERS",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 48 * time.Hour,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short key", func(c *Config) { c.SigningKey = []byte("short") }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }},
		{"refresh shorter than access", func(c *Config) { c.RefreshTTL = time.Minute }},
		{"missing issuer", func(c *Config) { c.Issuer = "" }},
		{"missing audience", func(c *Config) { c.Audience = "" }},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config to be rejected")
			}
		})
	}
}

func TestIssueVerifyAccessRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, jti, err := m.IssueAccess("u-1", "alice", "admin", []string{"users:read"}, "s-1")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if jti == "" {
		t.Fatal("expected non-empty jti")
	}

	claims, err := m.Verify(signed, TypeAccess)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "u-1" || claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.SessionID != "s-1" || claims.ID != jti {
		t.Fatalf("unexpected binding claims: %+v", claims)
	}
	if claims.TokenType != TypeAccess {
		t.Fatalf("expected access type, got %q", claims.TokenType)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "users:read" {
		t.Fatalf("unexpected permissions: %v", claims.Permissions)
	}
}

func TestIssueVerifyRefreshRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, jti, err := m.IssueRefresh("u-1", "s-1")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	claims, err := m.Verify(signed, TypeRefresh)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.ID != jti || claims.Subject != "u-1" || claims.SessionID != "s-1" {
		t.Fatalf("unexpected refresh claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongType(t *testing.T) {
	m := newTestManager(t)

	refresh, _, err := m.IssueRefresh("u-1", "s-1")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	if _, err := m.Verify(refresh, TypeAccess); !errors.Is(err, ErrWrongType) {
		t.Fatalf("expected ErrWrongType, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = time.Nanosecond
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, _, err := m.IssueAccess("u-1", "alice", "user", nil, "s-1")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := m.Verify(signed, TypeAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)

	cfg := testConfig()
	cfg.SigningKey = []byte("ffffffffffffffffffffffffffffffff")
	other, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, _, err := other.IssueAccess("u-1", "alice", "user", nil, "s-1")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	if _, err := m.Verify(signed, TypeAccess); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(raw, TypeAccess); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", raw, err)
		}
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Issuer = "SOME-OTHER-SERVICE"
	other, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, _, err := other.IssueAccess("u-1", "alice", "user", nil, "s-1")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	m := newTestManager(t)
	if _, err := m.Verify(signed, TypeAccess); err == nil {
		t.Fatal("expected issuer mismatch to fail verification")
	}
}
