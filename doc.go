// Package authcore is a self-hosted authentication and session
// security core. It verifies credentials against a pluggable user
// repository, issues and validates signed access/refresh token pairs,
// binds a CSRF token to each server-side session, revokes tokens
// before expiry through an in-memory registry, and records every
// security-relevant action in an audit log with inline anomaly
// detection.
//
// Construction goes through the fluent [Builder]:
//
//	engine, err := authcore.New().
//		WithConfig(cfg).
//		WithUserRepository(repo).
//		WithAuditSink(sink).
//		Build()
//
// The Engine exposes the request-facing operations: Login, Validate,
// Refresh, Logout, LogoutAll, ChangePassword, and SecuritySummary.
// All operations are safe for concurrent use.
package authcore
