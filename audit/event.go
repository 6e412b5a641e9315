// Package audit records security events in memory, forwards them to a
// pluggable sink, and watches the stream for anomalous patterns such
// as repeated login failures from one address.
package audit

import (
	"time"
)

// EventType is the closed set of recordable security events.
type EventType string

const (
	// EventLoginSuccess is an exported constant or variable used by the authentication engine.
	EventLoginSuccess EventType = "login_success"
	// EventLoginFailed is an exported constant or variable used by the authentication engine.
	EventLoginFailed EventType = "login_failed"
	// EventLogout is an exported constant or variable used by the authentication engine.
	EventLogout EventType = "logout"
	// EventTokenRefresh is an exported constant or variable used by the authentication engine.
	EventTokenRefresh EventType = "token_refresh"
	// EventPasswordChange is an exported constant or variable used by the authentication engine.
	EventPasswordChange EventType = "password_change"
	// EventAccountLocked is an exported constant or variable used by the authentication engine.
	EventAccountLocked EventType = "account_locked"
	// EventAccountUnlocked is an exported constant or variable used by the authentication engine.
	EventAccountUnlocked EventType = "account_unlocked"
	// EventAccessGranted is an exported constant or variable used by the authentication engine.
	EventAccessGranted EventType = "access_granted"
	// EventAccessDenied is an exported constant or variable used by the authentication engine.
	EventAccessDenied EventType = "access_denied"
	// EventCSRFAttackDetected is an exported constant or variable used by the authentication engine.
	EventCSRFAttackDetected EventType = "csrf_attack_detected"
	// EventRateLimitExceeded is an exported constant or variable used by the authentication engine.
	EventRateLimitExceeded EventType = "rate_limit_exceeded"
	// EventSuspiciousActivity is an exported constant or variable used by the authentication engine.
	EventSuspiciousActivity EventType = "suspicious_activity"
	// EventSecurityViolation is an exported constant or variable used by the authentication engine.
	EventSecurityViolation EventType = "security_violation"
	// EventSystemStart is an exported constant or variable used by the authentication engine.
	EventSystemStart EventType = "system_start"
	// EventSystemShutdown is an exported constant or variable used by the authentication engine.
	EventSystemShutdown EventType = "system_shutdown"
)

// Severity classifies how urgent an event is for downstream triage.
type Severity string

const (
	// SeverityLow is an exported constant or variable used by the authentication engine.
	SeverityLow Severity = "low"
	// SeverityMedium is an exported constant or variable used by the authentication engine.
	SeverityMedium Severity = "medium"
	// SeverityHigh is an exported constant or variable used by the authentication engine.
	SeverityHigh Severity = "high"
	// SeverityCritical is an exported constant or variable used by the authentication engine.
	SeverityCritical Severity = "critical"
)

// Event is the canonical audit record. Details carries event-specific
// structured data (failure counts, rule names) and may be nil.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"event_type"`
	Severity  Severity          `json:"severity"`
	UserID    string            `json:"user_id,omitempty"`
	Username  string            `json:"username,omitempty"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Resource  string            `json:"resource,omitempty"`
	Action    string            `json:"action,omitempty"`
	Result    string            `json:"result,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}
