// Package revocation tracks issued token IDs (jti) and their
// blacklist state, letting the engine reject tokens that were revoked
// before their natural expiry. The registry is in-memory and sharded
// the same way as the session store; a restart clears it, which fails
// safe because sessions are checked independently.
package revocation

import (
	"hash/fnv"
	"sync"
	"time"
)

// DefaultHorizon is how long a tracked token entry is retained before
// the sweep may drop it. It matches the longest refresh token
// lifetime, after which the token is rejected by expiry anyway.
const DefaultHorizon = 48 * time.Hour

const shardCount = 32

type entry struct {
	userID      string
	sessionID   string
	createdAt   time.Time
	blacklisted bool
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// Registry defines a public type used by authcore APIs.
//
// Registry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Registry struct {
	shards  [shardCount]*shard
	horizon time.Duration
}

// NewRegistry describes the newregistry operation and its observable behavior.
//
// NewRegistry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRegistry(horizon time.Duration) *Registry {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	r := &Registry{horizon: horizon}
	for i := range r.shards {
		r.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return r
}

func (r *Registry) shardFor(jti string) *shard {
	h := fnv.New32a()
	h.Write([]byte(jti))
	return r.shards[h.Sum32()%shardCount]
}

// Track records an issued token so it can later be revoked by jti or
// swept in bulk by user.
func (r *Registry) Track(jti, userID, sessionID string) {
	sh := r.shardFor(jti)
	sh.mu.Lock()
	sh.entries[jti] = &entry{
		userID:    userID,
		sessionID: sessionID,
		createdAt: time.Now(),
	}
	sh.mu.Unlock()
}

// IsBlacklisted reports whether the jti has been revoked. Unknown jtis
// are not blacklisted; expiry and signature checks gate them instead.
func (r *Registry) IsBlacklisted(jti string) bool {
	sh := r.shardFor(jti)
	sh.mu.RLock()
	e, ok := sh.entries[jti]
	blacklisted := ok && e.blacklisted
	sh.mu.RUnlock()
	return blacklisted
}

// Blacklist revokes a single jti. Revoking an untracked jti records it
// so a replay after restart-tracking loss is still caught.
func (r *Registry) Blacklist(jti string) {
	sh := r.shardFor(jti)
	sh.mu.Lock()
	if e, ok := sh.entries[jti]; ok {
		e.blacklisted = true
	} else {
		sh.entries[jti] = &entry{createdAt: time.Now(), blacklisted: true}
	}
	sh.mu.Unlock()
}

// BlacklistAllForUser revokes every tracked token of a user and
// returns how many newly became blacklisted.
func (r *Registry) BlacklistAllForUser(userID string) int {
	revoked := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for _, e := range sh.entries {
			if e.userID == userID && !e.blacklisted {
				e.blacklisted = true
				revoked++
			}
		}
		sh.mu.Unlock()
	}
	return revoked
}

// BlacklistSession revokes every tracked token bound to a session and
// returns how many newly became blacklisted.
func (r *Registry) BlacklistSession(sessionID string) int {
	revoked := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for _, e := range sh.entries {
			if e.sessionID == sessionID && !e.blacklisted {
				e.blacklisted = true
				revoked++
			}
		}
		sh.mu.Unlock()
	}
	return revoked
}

// SweepExpired drops entries older than the retention horizon and
// returns how many were removed.
func (r *Registry) SweepExpired(now time.Time) int {
	cutoff := now.Add(-r.horizon)
	removed := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		for jti, e := range sh.entries {
			if e.createdAt.Before(cutoff) {
				delete(sh.entries, jti)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Size returns the number of tracked entries across all shards.
func (r *Registry) Size() int {
	total := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}
