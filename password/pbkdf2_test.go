package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(DefaultConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t)

	hash, salt, err := h.Hash("P@ssw0rd1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "" || salt == "" {
		t.Fatal("expected non-empty hash and salt")
	}

	ok, err := h.Verify("P@ssw0rd1", hash, salt)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected correct password to verify")
	}

	ok, err = h.Verify("P@ssw0rd2", hash, salt)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := newTestHasher(t)

	hash1, salt1, err := h.Hash("P@ssw0rd1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, salt2, err := h.Hash("P@ssw0rd1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if salt1 == salt2 {
		t.Fatal("expected distinct salts for repeated hashing")
	}
	if hash1 == hash2 {
		t.Fatal("expected distinct hashes for repeated hashing")
	}
}

func TestVerifyRejectsCorruptEncodings(t *testing.T) {
	h := newTestHasher(t)

	hash, salt, err := h.Hash("P@ssw0rd1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if _, err := h.Verify("P@ssw0rd1", "not-base64!!", salt); err == nil {
		t.Fatal("expected error for corrupt hash encoding")
	}
	if _, err := h.Verify("P@ssw0rd1", hash, "not-base64!!"); err == nil {
		t.Fatal("expected error for corrupt salt encoding")
	}
	if _, err := h.Verify("P@ssw0rd1", hash, "c2hvcnQ"); err == nil {
		t.Fatal("expected error for undersized salt")
	}
}

func TestNewHasherRejectsWeakParameters(t *testing.T) {
	cases := []Config{
		{Iterations: 100, SaltLength: 32, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 4, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 32, KeyLength: 4},
	}

	for _, cfg := range cases {
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("expected config %+v to be rejected", cfg)
		}
	}
}

func TestValidateStrength(t *testing.T) {
	if errs := ValidateStrength("P@ssw0rd1"); len(errs) != 0 {
		t.Fatalf("expected strong password to pass, got %v", errs)
	}

	errs := ValidateStrength("weak")
	if len(errs) == 0 {
		t.Fatal("expected weak password to fail")
	}
	joined := strings.Join(errs, "; ")
	if !strings.Contains(joined, "at least 8 characters") {
		t.Fatalf("expected length rule in %q", joined)
	}
	if !strings.Contains(joined, "uppercase") {
		t.Fatalf("expected uppercase rule in %q", joined)
	}
	if !strings.Contains(joined, "number") {
		t.Fatalf("expected digit rule in %q", joined)
	}
	if !strings.Contains(joined, "special") {
		t.Fatalf("expected special character rule in %q", joined)
	}

	if errs := ValidateStrength("alllowercase1!"); len(errs) != 1 {
		t.Fatalf("expected exactly the uppercase rule, got %v", errs)
	}
}
