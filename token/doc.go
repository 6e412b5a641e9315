// Package token issues and verifies the signed access and refresh
// tokens of the authentication core.
//
// Tokens are compact JWS (header.claims.signature) signed with a
// process-wide HS256 key. Verification is pure: it performs no I/O and
// mutates no shared state, so it is safe from any number of request
// goroutines without locking. Revocation is not this package's
// concern; a verified token may still be rejected by the revocation
// registry.
package token
