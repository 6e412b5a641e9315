package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// verifyCredentials checks a username/password pair against the
// repository. It is pure: lockout counters are mutated by the caller,
// never here. The returned error identifies the exact failure for
// auditing; callers must collapse it to a generic message before it
// crosses the API boundary.
func (e *Engine) verifyCredentials(ctx context.Context, username, pass string) (*User, error) {
	user, err := e.repository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := time.Now()
	if !user.Active || user.Status != StatusActive {
		return user, ErrAccountDisabled
	}
	if now.Before(user.LockedUntil) {
		return user, ErrAccountLocked
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash, user.Salt)
	if err != nil {
		return user, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !ok {
		return user, ErrInvalidCredentials
	}

	return user, nil
}
