package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// casSwapScript replaces a session blob only when it is unchanged
// since it was read, serializing concurrent mutations to the same
// session. Status: 1 swapped, 0 key missing, -1 conflicting write.
const casSwapScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return -1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var casSwapLua = redis.NewScript(casSwapScript)

const (
	casStatusMissing  int64 = 0
	casStatusSwapped  int64 = 1
	casStatusConflict int64 = -1
)

// RedisStore is a Redis-backed [Store]. Each session is a JSON blob
// under its own key with a TTL matching the session lifetime, plus a
// per-user set indexing the user's session IDs. Redis expiry handles
// most cleanup; SweepExpired reconciles the index and revoked blobs.
// Mutations go through a Lua compare-and-swap, so two writers racing
// on one session never lose an update.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "authcore"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.prefix + ":sess:" + sessionID
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

func (s *RedisStore) load(ctx context.Context, sessionID string) (*Session, error) {
	_, sess, err := s.loadRaw(ctx, sessionID)
	return sess, err
}

// loadRaw returns the stored blob alongside the decoded session; the
// blob is the compare value for a subsequent CAS.
func (s *RedisStore) loadRaw(ctx context.Context, sessionID string) ([]byte, *Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil, fmt.Errorf("%w: corrupt session blob: %v", ErrStoreUnavailable, err)
	}
	return data, &sess, nil
}

// swap atomically replaces the session blob read as old with the
// mutated session. It reports casStatusConflict when another writer
// got there first; callers reload and retry.
func (s *RedisStore) swap(ctx context.Context, sessionID string, old []byte, sess *Session, ttl time.Duration) (int64, error) {
	updated, err := json.Marshal(sess)
	if err != nil {
		return casStatusMissing, err
	}

	status, err := casSwapLua.Run(ctx, s.client,
		[]string{s.sessionKey(sessionID)},
		old, updated, ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return casStatusMissing, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return status, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(sess.ID), data, ttl)
		pipe.SAdd(ctx, s.userKey(sess.UserID), sess.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Best effort: drop index entries whose blobs already expired.
	s.pruneUser(ctx, sess.UserID)
	return nil
}

func (s *RedisStore) pruneUser(ctx context.Context, userID string) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return
	}
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, s.sessionKey(id)).Result()
		if err == nil && exists == 0 {
			_ = s.client.SRem(ctx, s.userKey(userID), id).Err()
		}
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Live(time.Now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Touch(ctx context.Context, sessionID string, at time.Time) error {
	for {
		old, sess, err := s.loadRaw(ctx, sessionID)
		if err != nil {
			return err
		}
		if !sess.Live(at) {
			return ErrNotFound
		}

		sess.LastActivity = at
		ttl := time.Until(sess.ExpiresAt)
		if ttl < time.Millisecond {
			return ErrNotFound
		}

		status, err := s.swap(ctx, sessionID, old, sess, ttl)
		if err != nil {
			return err
		}
		switch status {
		case casStatusSwapped:
			return nil
		case casStatusMissing:
			return ErrNotFound
		case casStatusConflict:
			// Another writer changed the session; retry on fresh state.
		}
	}
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	for {
		old, sess, err := s.loadRaw(ctx, sessionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if !sess.Active {
			return nil
		}

		sess.Active = false
		ttl := time.Until(sess.ExpiresAt)
		if ttl < time.Millisecond {
			// Already expired; let Redis reap the blob.
			return nil
		}

		status, err := s.swap(ctx, sessionID, old, sess, ttl)
		if err != nil {
			return err
		}
		switch status {
		case casStatusSwapped, casStatusMissing:
			return nil
		case casStatusConflict:
			// Another writer changed the session; retry on fresh state.
		}
	}
}

// RevokeAll describes the revokeall operation and its observable behavior.
//
// RevokeAll may return an error when input validation, dependency calls, or security checks fail.
// RevokeAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) RevokeAll(ctx context.Context, userID string) (int, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	revoked := 0
	for _, id := range ids {
		sess, loadErr := s.load(ctx, id)
		if loadErr != nil {
			if errors.Is(loadErr, ErrNotFound) {
				continue
			}
			return revoked, loadErr
		}
		if !sess.Live(now) {
			continue
		}
		if err := s.Revoke(ctx, id); err != nil {
			return revoked, err
		}
		revoked++
	}

	return revoked, nil
}

// ListActive describes the listactive operation and its observable behavior.
//
// ListActive may return an error when input validation, dependency calls, or security checks fail.
// ListActive does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) ListActive(ctx context.Context, userID string) ([]*Session, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Session{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	live := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sess, loadErr := s.load(ctx, id)
		if loadErr != nil {
			if errors.Is(loadErr, ErrNotFound) {
				continue
			}
			return nil, loadErr
		}
		if sess.Live(now) {
			live = append(live, sess)
		}
	}

	return live, nil
}

// SweepExpired describes the sweepexpired operation and its observable behavior.
//
// SweepExpired may return an error when input validation, dependency calls, or security checks fail.
// SweepExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	pattern := s.prefix + ":user:*"
	userPrefixLen := len(s.prefix + ":user:")

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		for _, userKey := range keys {
			userID := userKey[userPrefixLen:]
			ids, err := s.client.SMembers(ctx, userKey).Result()
			if err != nil {
				return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}

			for _, id := range ids {
				sess, loadErr := s.load(ctx, id)
				if loadErr != nil && !errors.Is(loadErr, ErrNotFound) {
					return removed, loadErr
				}
				if loadErr == nil && sess.Live(now) {
					continue
				}

				_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, s.sessionKey(id))
					pipe.SRem(ctx, s.userKey(userID), id)
					return nil
				})
				if err != nil {
					return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
				}
				removed++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

// Ping reports Redis availability.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
