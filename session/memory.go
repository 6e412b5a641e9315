package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// MemoryStore is an in-process [Store]. Sessions are spread across a
// fixed set of shards keyed by session ID, so operations on different
// sessions rarely contend on the same lock. There is no global lock.
type MemoryStore struct {
	shards [shardCount]*shard

	// userIndex maps userID -> set of session IDs, guarded separately
	// from the shards so per-session reads never touch it.
	indexMu   sync.RWMutex
	userIndex map[string]map[string]struct{}
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{userIndex: make(map[string]map[string]struct{})}
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return s
}

func (s *MemoryStore) shardFor(sessionID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return s.shards[h.Sum32()%shardCount]
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	copied := *sess

	sh := s.shardFor(sess.ID)
	sh.mu.Lock()
	sh.sessions[sess.ID] = &copied
	sh.mu.Unlock()

	s.indexMu.Lock()
	ids := s.userIndex[sess.UserID]
	if ids == nil {
		ids = make(map[string]struct{})
		s.userIndex[sess.UserID] = ids
	}
	ids[sess.ID] = struct{}{}
	s.indexMu.Unlock()

	s.pruneUser(sess.UserID, time.Now())
	return nil
}

// pruneUser drops the user's dead sessions so long-lived accounts do
// not accumulate garbage between sweeps.
func (s *MemoryStore) pruneUser(userID string, now time.Time) {
	s.indexMu.RLock()
	ids := make([]string, 0, len(s.userIndex[userID]))
	for id := range s.userIndex[userID] {
		ids = append(ids, id)
	}
	s.indexMu.RUnlock()

	var dead []string
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.Lock()
		if sess, ok := sh.sessions[id]; ok && sess.Expired(now) {
			delete(sh.sessions, id)
			dead = append(dead, id)
		}
		sh.mu.Unlock()
	}

	if len(dead) > 0 {
		s.indexMu.Lock()
		if index := s.userIndex[userID]; index != nil {
			for _, id := range dead {
				delete(index, id)
			}
			if len(index) == 0 {
				delete(s.userIndex, userID)
			}
		}
		s.indexMu.Unlock()
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	sh := s.shardFor(sessionID)
	sh.mu.RLock()
	sess, ok := sh.sessions[sessionID]
	if !ok || !sess.Live(time.Now()) {
		sh.mu.RUnlock()
		return nil, ErrNotFound
	}
	copied := *sess
	sh.mu.RUnlock()

	return &copied, nil
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Touch(_ context.Context, sessionID string, at time.Time) error {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[sessionID]
	if !ok || !sess.Live(at) {
		return ErrNotFound
	}
	sess.LastActivity = at
	return nil
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Revoke(_ context.Context, sessionID string) error {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	if sess, ok := sh.sessions[sessionID]; ok {
		sess.Active = false
	}
	sh.mu.Unlock()
	return nil
}

// RevokeAll describes the revokeall operation and its observable behavior.
//
// RevokeAll may return an error when input validation, dependency calls, or security checks fail.
// RevokeAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) RevokeAll(_ context.Context, userID string) (int, error) {
	s.indexMu.RLock()
	ids := make([]string, 0, len(s.userIndex[userID]))
	for id := range s.userIndex[userID] {
		ids = append(ids, id)
	}
	s.indexMu.RUnlock()

	now := time.Now()
	revoked := 0
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.Lock()
		if sess, ok := sh.sessions[id]; ok {
			if sess.Live(now) {
				revoked++
			}
			sess.Active = false
		}
		sh.mu.Unlock()
	}

	return revoked, nil
}

// ListActive describes the listactive operation and its observable behavior.
//
// ListActive may return an error when input validation, dependency calls, or security checks fail.
// ListActive does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) ListActive(_ context.Context, userID string) ([]*Session, error) {
	s.indexMu.RLock()
	ids := make([]string, 0, len(s.userIndex[userID]))
	for id := range s.userIndex[userID] {
		ids = append(ids, id)
	}
	s.indexMu.RUnlock()

	now := time.Now()
	live := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.RLock()
		if sess, ok := sh.sessions[id]; ok && sess.Live(now) {
			copied := *sess
			live = append(live, &copied)
		}
		sh.mu.RUnlock()
	}

	return live, nil
}

// SweepExpired describes the sweepexpired operation and its observable behavior.
//
// SweepExpired may return an error when input validation, dependency calls, or security checks fail.
// SweepExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	type victim struct {
		userID    string
		sessionID string
	}

	removed := 0
	var victims []victim
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if !sess.Live(now) {
				victims = append(victims, victim{userID: sess.UserID, sessionID: id})
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	if len(victims) > 0 {
		s.indexMu.Lock()
		for _, v := range victims {
			if ids := s.userIndex[v.userID]; ids != nil {
				delete(ids, v.sessionID)
				if len(ids) == 0 {
					delete(s.userIndex, v.userID)
				}
			}
		}
		s.indexMu.Unlock()
	}

	return removed, nil
}
