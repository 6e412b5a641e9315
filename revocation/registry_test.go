package revocation

import (
	"fmt"
	"testing"
	"time"
)

func TestTrackAndBlacklist(t *testing.T) {
	r := NewRegistry(0)

	r.Track("jti-1", "u-1", "s-1")
	if r.IsBlacklisted("jti-1") {
		t.Fatal("tracked token must not start blacklisted")
	}

	r.Blacklist("jti-1")
	if !r.IsBlacklisted("jti-1") {
		t.Fatal("expected jti-1 to be blacklisted")
	}
}

func TestBlacklistUntrackedJTI(t *testing.T) {
	r := NewRegistry(0)

	r.Blacklist("never-tracked")
	if !r.IsBlacklisted("never-tracked") {
		t.Fatal("expected untracked jti to be recorded as blacklisted")
	}
}

func TestUnknownJTINotBlacklisted(t *testing.T) {
	r := NewRegistry(0)

	if r.IsBlacklisted("unknown") {
		t.Fatal("unknown jti must not be blacklisted")
	}
}

func TestBlacklistAllForUser(t *testing.T) {
	r := NewRegistry(0)

	r.Track("jti-a", "u-1", "s-1")
	r.Track("jti-b", "u-1", "s-2")
	r.Track("jti-c", "u-2", "s-3")

	if got := r.BlacklistAllForUser("u-1"); got != 2 {
		t.Fatalf("expected 2 newly blacklisted tokens, got %d", got)
	}
	if !r.IsBlacklisted("jti-a") || !r.IsBlacklisted("jti-b") {
		t.Fatal("expected both of u-1's tokens blacklisted")
	}
	if r.IsBlacklisted("jti-c") {
		t.Fatal("u-2's token must be unaffected")
	}

	// Second call finds nothing new.
	if got := r.BlacklistAllForUser("u-1"); got != 0 {
		t.Fatalf("expected 0 on repeat, got %d", got)
	}
}

func TestBlacklistSession(t *testing.T) {
	r := NewRegistry(0)

	r.Track("jti-access", "u-1", "s-1")
	r.Track("jti-refresh", "u-1", "s-1")
	r.Track("jti-other", "u-1", "s-2")

	if got := r.BlacklistSession("s-1"); got != 2 {
		t.Fatalf("expected 2 newly blacklisted tokens, got %d", got)
	}
	if r.IsBlacklisted("jti-other") {
		t.Fatal("token bound to another session must be unaffected")
	}
}

func TestSweepExpired(t *testing.T) {
	r := NewRegistry(time.Hour)

	r.Track("jti-old", "u-1", "s-1")
	r.Track("jti-new", "u-1", "s-2")

	// Age only jti-old past the horizon.
	sh := r.shardFor("jti-old")
	sh.mu.Lock()
	sh.entries["jti-old"].createdAt = time.Now().Add(-2 * time.Hour)
	sh.mu.Unlock()

	if removed := r.SweepExpired(time.Now()); removed != 1 {
		t.Fatalf("expected 1 removed entry, got %d", removed)
	}
	if r.Size() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", r.Size())
	}
	if r.IsBlacklisted("jti-old") {
		t.Fatal("swept entry must read as not blacklisted")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(0)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				jti := fmt.Sprintf("jti-%d-%d", g, i)
				r.Track(jti, fmt.Sprintf("u-%d", g), "s-1")
				r.IsBlacklisted(jti)
				if i%2 == 0 {
					r.Blacklist(jti)
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	if r.Size() != 800 {
		t.Fatalf("expected 800 tracked entries, got %d", r.Size())
	}
}
