// Package password implements PBKDF2-SHA256 credential hashing with
// per-user salts, constant-time verification, and the password
// strength policy enforced on password changes.
package password
