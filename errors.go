package authcore

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountDisabled is an exported constant or variable used by the authentication engine.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountLocked is an exported constant or variable used by the authentication engine.
	ErrAccountLocked = errors.New("account locked")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is an exported constant or variable used by the authentication engine.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenRevoked is an exported constant or variable used by the authentication engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrWrongTokenType is an exported constant or variable used by the authentication engine.
	ErrWrongTokenType = errors.New("unexpected token type")
	// ErrSessionExpired is an exported constant or variable used by the authentication engine.
	ErrSessionExpired = errors.New("session expired or revoked")
	// ErrCSRFMissing is an exported constant or variable used by the authentication engine.
	ErrCSRFMissing = errors.New("csrf token missing")
	// ErrCSRFMismatch is an exported constant or variable used by the authentication engine.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrWeakPassword is an exported constant or variable used by the authentication engine.
	ErrWeakPassword = errors.New("password policy violation")
	// ErrRepositoryUnavailable is an exported constant or variable used by the authentication engine.
	ErrRepositoryUnavailable = errors.New("user repository unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
