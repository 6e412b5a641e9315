package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 10_000
	minSaltLength = 16
	minKeyLength  = 16
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns the hashing parameters used by the engine when
// none are supplied: 100k iterations, 32-byte salt, 32-byte key.
func DefaultConfig() Config {
	return Config{
		Iterations: 100_000,
		SaltLength: 32,
		KeyLength:  32,
	}
}

// Hasher derives and verifies PBKDF2-SHA256 password hashes. The hash
// and salt are stored as separate base64 fields on the user record.
type Hasher struct {
	config Config
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Iterations < minIterations {
		return nil, errors.New("password iterations must be >= 10000")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("password key length must be >= 16")
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives a new hash from password with a fresh random salt.
// Both return values are standard-base64 encoded.
func (h *Hasher) Hash(password string) (hash string, salt string, err error) {
	rawSalt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, rawSalt); err != nil {
		return "", "", err
	}

	key := pbkdf2.Key([]byte(password), rawSalt, h.config.Iterations, h.config.KeyLength, sha256.New)

	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(rawSalt),
		nil
}

// Verify recomputes the derivation for password against the stored
// hash+salt pair and compares in constant time.
func (h *Hasher) Verify(password, encodedHash, encodedSalt string) (bool, error) {
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, errors.New("invalid salt encoding")
	}
	if len(salt) < minSaltLength {
		return false, errors.New("invalid salt length")
	}

	expected, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, errors.New("invalid hash encoding")
	}
	if len(expected) < minKeyLength {
		return false, errors.New("invalid hash length")
	}

	computed := pbkdf2.Key([]byte(password), salt, h.config.Iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
