// Package csrf issues and compares the per-session anti-forgery
// tokens used by the double-submit scheme: a token minted at login is
// stored on the session and must be echoed back in a request header.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// TokenBytes is the entropy of a generated token before encoding.
const TokenBytes = 32

// Generate returns a URL-safe random token with [TokenBytes] bytes of
// entropy. Tokens are opaque; callers must not parse them.
func Generate() (string, error) {
	raw := make([]byte, TokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Verify reports whether provided matches bound using a constant-time
// comparison. Empty tokens never match.
func Verify(provided, bound string) bool {
	if provided == "" || bound == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(bound)) == 1
}
