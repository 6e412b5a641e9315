package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type discriminates access tokens from refresh tokens. Verification
// rejects a token presented as the wrong type even when the signature
// is valid.
type Type string

const (
	// TypeAccess is an exported constant or variable used by the authentication engine.
	TypeAccess Type = "access"
	// TypeRefresh is an exported constant or variable used by the authentication engine.
	TypeRefresh Type = "refresh"
)

var (
	// ErrExpired is returned when the token signature is valid but exp has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned for tokens that cannot be parsed or carry invalid claims.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature is returned when the signature does not verify against the signing key.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrWrongType is returned when a valid token is presented as the wrong type.
	ErrWrongType = errors.New("unexpected token type")
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Claims is the decoded payload of an access or refresh token. The
// registered fields carry subject (user id), jti, iss, aud, iat, exp.
type Claims struct {
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	SessionID   string   `json:"session_id"`
	TokenType   Type     `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies token pairs. The signing key is fixed at
// construction; rotation requires a process restart (documented
// limitation of the single-key design).
type Manager struct {
	config Config
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must be >= access TTL")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// IssueAccess mints a short-lived access token for a user/session and
// returns the compact encoding plus the generated jti.
func (m *Manager) IssueAccess(userID, username, role string, permissions []string, sessionID string) (string, string, error) {
	return m.issue(Claims{
		Username:    username,
		Role:        role,
		Permissions: permissions,
		SessionID:   sessionID,
	}, userID, TypeAccess, m.config.AccessTTL)
}

// IssueRefresh mints a long-lived refresh token. Refresh claims carry
// only the subject and session binding.
func (m *Manager) IssueRefresh(userID, sessionID string) (string, string, error) {
	return m.issue(Claims{SessionID: sessionID}, userID, TypeRefresh, m.config.RefreshTTL)
}

func (m *Manager) issue(claims Claims, subject string, typ Type, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims.TokenType = typ
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		Issuer:    m.config.Issuer,
		Audience:  jwt.ClaimStrings{m.config.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.SigningKey)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// Verify checks the signature before inspecting any claim, then
// validates issuer, audience, expiry, and the expected token type.
// Failures map to [ErrBadSignature], [ErrExpired], [ErrWrongType], or
// [ErrMalformed].
func (m *Manager) Verify(tokenStr string, expected Type) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.SigningKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.ID == "" || claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrMalformed
	}
	if claims.TokenType != expected {
		return nil, ErrWrongType
	}

	return claims, nil
}
