// Package session tracks server-side login sessions.
//
// A session is created at login, touched on every validated request,
// and revoked on logout. Two [Store] implementations are provided: a
// sharded in-memory store for single-process deployments, and a
// Redis-backed store for deployments that need sessions to survive a
// restart.
package session
