package authcore

import (
	"context"
	"time"

	"github.com/urak/authcore/token"
)

// Role defines a public type used by authcore APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin Role = "admin"
	// RoleEditor is an exported constant or variable used by the authentication engine.
	RoleEditor Role = "editor"
	// RoleUser is an exported constant or variable used by the authentication engine.
	RoleUser Role = "user"
	// RoleGuest is an exported constant or variable used by the authentication engine.
	RoleGuest Role = "guest"
)

// Permissions returns the fixed capability set of the role. Unknown
// roles get the guest set.
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return []string{
			"users:read", "users:write", "users:delete",
			"content:read", "content:write", "content:delete",
			"system:admin", "audit:read",
		}
	case RoleEditor:
		return []string{"content:read", "content:write", "users:read"}
	case RoleUser:
		return []string{"content:read", "profile:write"}
	default:
		return []string{"content:read"}
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser, RoleGuest:
		return true
	}
	return false
}

// Status defines a public type used by authcore APIs.
//
// Status instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Status string

const (
	// StatusActive is an exported constant or variable used by the authentication engine.
	StatusActive Status = "active"
	// StatusInactive is an exported constant or variable used by the authentication engine.
	StatusInactive Status = "inactive"
	// StatusSuspended is an exported constant or variable used by the authentication engine.
	StatusSuspended Status = "suspended"
	// StatusPending is an exported constant or variable used by the authentication engine.
	StatusPending Status = "pending"
)

// User is the repository-owned account record. PasswordHash and Salt
// are stored base64-encoded; the engine never sees plaintext beyond
// the verification call.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Salt         string
	Role         Role
	Status       Status
	Active       bool

	FailedLoginAttempts int
	LockedUntil         time.Time
	LastLogin           time.Time
}

// CanLogin reports whether the account may authenticate at now:
// active flag set, status active, and no live lockout.
func (u *User) CanLogin(now time.Time) bool {
	return u.Active && u.Status == StatusActive && !now.Before(u.LockedUntil)
}

// UserRepository is the persistence boundary for accounts. The engine
// reads users and writes back counter/lockout/credential updates;
// everything else about storage is the caller's concern.
// Implementations must be safe for concurrent use.
type UserRepository interface {
	// FindByUsername returns the user or ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID returns the user or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// Update persists the mutated user record.
	Update(ctx context.Context, user *User) error
}

// LoginRequest defines a public type used by authcore APIs.
//
// LoginRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginRequest struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult defines a public type used by authcore APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Success      bool
	AccessToken  string
	RefreshToken string
	CSRFToken    string
	SessionID    string
	User         *User
	ExpiresIn    time.Duration
	ErrorMessage string
}

// ValidateRequest defines a public type used by authcore APIs.
//
// ValidateRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidateRequest struct {
	Token       string
	RequireCSRF bool
	CSRFToken   string
	Resource    string
	Action      string
}

// ValidationResult defines a public type used by authcore APIs.
//
// ValidationResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ValidationResult struct {
	Valid        bool
	User         *User
	SessionID    string
	Claims       *token.Claims
	ErrorMessage string
}

// RefreshRequest defines a public type used by authcore APIs.
//
// RefreshRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshRequest struct {
	RefreshToken string
}

// RefreshResult defines a public type used by authcore APIs.
//
// RefreshResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshResult struct {
	Success      bool
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	ErrorMessage string
}
