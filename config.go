package authcore

import (
	"errors"
	"time"
)

// JWTConfig defines a public type used by authcore APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// SessionConfig defines a public type used by authcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TTL         time.Duration
	RedisPrefix string
}

// LockoutConfig defines a public type used by authcore APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Retention        int
	FailureWindow    time.Duration
	FailureThreshold int
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// MaintenanceConfig defines a public type used by authcore APIs.
//
// MaintenanceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MaintenanceConfig struct {
	Enabled           bool
	Interval          time.Duration
	RevocationHorizon time.Duration
	AuditMaxAge       time.Duration
}

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT         JWTConfig
	Password    PasswordConfig
	Session     SessionConfig
	Lockout     LockoutConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
	Maintenance MaintenanceConfig
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:     "URAK-AUTH-SERVICE",
			Audience:   "URAK-USERS",
			AccessTTL:  30 * time.Minute,
			RefreshTTL: 48 * time.Hour,
		},
		Password: PasswordConfig{
			Iterations: 100_000,
			SaltLength: 32,
			KeyLength:  32,
		},
		Session: SessionConfig{
			TTL:         48 * time.Hour,
			RedisPrefix: "authcore",
		},
		Lockout: LockoutConfig{
			MaxFailedAttempts: 5,
			LockoutDuration:   30 * time.Minute,
		},
		Audit: AuditConfig{
			Retention:        10000,
			FailureWindow:    30 * time.Minute,
			FailureThreshold: 5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Maintenance: MaintenanceConfig{
			Enabled:           true,
			Interval:          time.Hour,
			RevocationHorizon: 48 * time.Hour,
			AuditMaxAge:       7 * 24 * time.Hour,
		},
	}
}

// DefaultConfig returns the production defaults. Callers override the
// signing key at minimum; everything else is usable as-is.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningKey = append([]byte(nil), cfg.JWT.SigningKey...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if len(c.JWT.SigningKey) < 32 {
		return errors.New("JWT.SigningKey must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT TTLs must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT.RefreshTTL must be >= JWT.AccessTTL")
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return errors.New("JWT.Issuer and JWT.Audience are required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}
	if c.Lockout.MaxFailedAttempts <= 0 {
		return errors.New("Lockout.MaxFailedAttempts must be positive")
	}
	if c.Lockout.LockoutDuration <= 0 {
		return errors.New("Lockout.LockoutDuration must be positive")
	}
	if c.Audit.Retention <= 0 {
		return errors.New("Audit.Retention must be positive")
	}
	if c.Audit.FailureWindow <= 0 || c.Audit.FailureThreshold <= 0 {
		return errors.New("Audit failure window and threshold must be positive")
	}
	if c.Maintenance.Enabled && c.Maintenance.Interval <= 0 {
		return errors.New("Maintenance.Interval must be positive when enabled")
	}
	return nil
}
