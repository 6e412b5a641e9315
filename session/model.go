package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session ID resolves to nothing.
var ErrNotFound = errors.New("session not found")

// ErrStoreUnavailable wraps backend failures (Redis down, etc).
var ErrStoreUnavailable = errors.New("session store unavailable")

// Session defines a public type used by authcore APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CSRFToken    string    `json:"csrf_token"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	Active       bool      `json:"active"`
}

// Expired reports whether the session's lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Live reports whether the session is active and unexpired at now.
func (s *Session) Live(now time.Time) bool {
	return s.Active && !s.Expired(now)
}

// Store is the persistence contract for sessions. Implementations must
// be safe for concurrent use; Get must not return sessions that are
// expired or revoked.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, sess *Session) error

	// Get returns a live session by ID, or ErrNotFound when the ID is
	// unknown, expired, or revoked.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Touch records activity on a live session, updating LastActivity.
	Touch(ctx context.Context, sessionID string, at time.Time) error

	// Revoke marks a session inactive. Revoking an unknown or already
	// revoked session is a no-op.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAll marks every session of a user inactive and returns how
	// many were live before the call.
	RevokeAll(ctx context.Context, userID string) (int, error)

	// ListActive returns the user's live sessions in unspecified order.
	ListActive(ctx context.Context, userID string) ([]*Session, error)

	// SweepExpired deletes sessions that are expired or revoked and
	// returns how many were removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
