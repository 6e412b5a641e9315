package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urak/authcore/audit"
	"github.com/urak/authcore/csrf"
	"github.com/urak/authcore/password"
	"github.com/urak/authcore/revocation"
	"github.com/urak/authcore/session"
	"github.com/urak/authcore/token"
)

// genericAuthFailure is the only login error message that crosses the
// API boundary. The specific failure reason is recorded in the audit
// log so callers cannot probe which usernames exist.
const genericAuthFailure = "authentication failed"

// Engine is the authentication orchestrator. It owns the credential
// verifier, token manager, session store, revocation registry, and
// audit recorder, and exposes the request-facing operations.
// All methods are safe for concurrent use.
type Engine struct {
	config     Config
	repository UserRepository
	tokens     *token.Manager
	hasher     *password.Hasher
	sessions   session.Store
	registry   *revocation.Registry
	audit      *audit.Recorder
	metrics    *Metrics
	sweeper    *sweeper
}

func (e *Engine) auditEvent(ctx context.Context, event audit.Event) {
	if event.IPAddress == "" {
		event.IPAddress = clientIPFromContext(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = userAgentFromContext(ctx)
	}
	e.audit.Log(ctx, event)
}

// Login authenticates a username/password pair. Every failure path
// returns the same generic message; the audit log carries the real
// reason. On success it creates a session with a bound CSRF token,
// issues an access/refresh pair, and registers both token IDs with
// the revocation registry.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if req.IPAddress == "" {
		req.IPAddress = clientIPFromContext(ctx)
	}
	if req.UserAgent == "" {
		req.UserAgent = userAgentFromContext(ctx)
	}

	user, err := e.verifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrRepositoryUnavailable) {
			return nil, err
		}
		e.metrics.LoginFailure()
		e.recordLoginFailure(ctx, req, user, err)
		return &LoginResult{ErrorMessage: genericAuthFailure}, nil
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = time.Time{}
	user.LastLogin = time.Now()
	if err := e.repository.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	csrfToken, err := csrf.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &session.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		CSRFToken:    csrfToken,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(e.config.Session.TTL),
		Active:       true,
	}
	if err := e.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	accessToken, accessJTI, err := e.tokens.IssueAccess(
		user.ID, user.Username, string(user.Role), user.Role.Permissions(), sess.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshJTI, err := e.tokens.IssueRefresh(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}

	e.registry.Track(accessJTI, user.ID, sess.ID)
	e.registry.Track(refreshJTI, user.ID, sess.ID)

	e.metrics.LoginSuccess()
	e.auditEvent(ctx, audit.Event{
		Type:      audit.EventLoginSuccess,
		Severity:  audit.SeverityLow,
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		SessionID: sess.ID,
		Result:    "success",
	})

	return &LoginResult{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CSRFToken:    csrfToken,
		SessionID:    sess.ID,
		User:         user,
		ExpiresIn:    e.config.JWT.AccessTTL,
	}, nil
}

// recordLoginFailure audits the exact failure reason and advances the
// lockout counter for wrong-password attempts. Counter persistence is
// best effort; a repository error here must not mask the auth result.
func (e *Engine) recordLoginFailure(ctx context.Context, req LoginRequest, user *User, cause error) {
	reason := "invalid_password"
	switch {
	case errors.Is(cause, ErrUserNotFound):
		reason = "user_not_found"
	case errors.Is(cause, ErrAccountDisabled):
		reason = "account_disabled"
	case errors.Is(cause, ErrAccountLocked):
		reason = "account_locked"
	}

	event := audit.Event{
		Type:      audit.EventLoginFailed,
		Severity:  audit.SeverityMedium,
		Username:  req.Username,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Result:    "failure",
		Details:   map[string]string{"reason": reason},
	}
	if user != nil {
		event.UserID = user.ID
	}
	e.auditEvent(ctx, event)

	if user == nil || !errors.Is(cause, ErrInvalidCredentials) {
		return
	}

	user.FailedLoginAttempts++
	locked := false
	if user.FailedLoginAttempts >= e.config.Lockout.MaxFailedAttempts && !time.Now().Before(user.LockedUntil) {
		user.LockedUntil = time.Now().Add(e.config.Lockout.LockoutDuration)
		locked = true
	}
	if err := e.repository.Update(ctx, user); err != nil {
		log.Printf("authcore: failed to persist lockout state for %q: %v", user.Username, err)
		return
	}
	if locked {
		e.auditEvent(ctx, audit.Event{
			Type:      audit.EventAccountLocked,
			Severity:  audit.SeverityHigh,
			UserID:    user.ID,
			Username:  user.Username,
			IPAddress: req.IPAddress,
			Result:    "locked",
			Details: map[string]string{
				"failed_attempts": strconv.Itoa(user.FailedLoginAttempts),
				"locked_minutes":  strconv.Itoa(int(e.config.Lockout.LockoutDuration.Minutes())),
			},
		})
	}
}

// Validate checks an access token and its backing session. The check
// order is fixed: signature and claims, blacklist, user status,
// session liveness, then the optional CSRF comparison. The first
// failure short-circuits and is audited.
func (e *Engine) Validate(ctx context.Context, req ValidateRequest) *ValidationResult {
	claims, err := e.tokens.Verify(req.Token, token.TypeAccess)
	if err != nil {
		e.metrics.Validation("invalid_token")
		e.denyAccess(ctx, req, audit.Event{Result: "invalid_token"})
		return &ValidationResult{ErrorMessage: e.tokenErrorMessage(err)}
	}

	if e.registry.IsBlacklisted(claims.ID) {
		e.metrics.Validation("revoked")
		e.denyAccess(ctx, req, audit.Event{
			UserID:    claims.Subject,
			Username:  claims.Username,
			SessionID: claims.SessionID,
			Result:    "token_revoked",
		})
		return &ValidationResult{ErrorMessage: ErrTokenRevoked.Error()}
	}

	user, err := e.repository.FindByID(ctx, claims.Subject)
	if err != nil {
		e.metrics.Validation("user_missing")
		e.denyAccess(ctx, req, audit.Event{
			UserID:    claims.Subject,
			SessionID: claims.SessionID,
			Result:    "user_not_found",
		})
		return &ValidationResult{ErrorMessage: ErrUserNotFound.Error()}
	}
	if !user.Active || user.Status != StatusActive {
		e.metrics.Validation("account_disabled")
		e.denyAccess(ctx, req, audit.Event{
			UserID:    user.ID,
			Username:  user.Username,
			SessionID: claims.SessionID,
			Result:    "account_disabled",
		})
		return &ValidationResult{ErrorMessage: ErrAccountDisabled.Error()}
	}

	sess, err := e.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		e.metrics.Validation("session_expired")
		e.denyAccess(ctx, req, audit.Event{
			UserID:    user.ID,
			Username:  user.Username,
			SessionID: claims.SessionID,
			Result:    "session_expired",
		})
		return &ValidationResult{ErrorMessage: ErrSessionExpired.Error()}
	}

	if err := e.sessions.Touch(ctx, sess.ID, time.Now()); err != nil {
		log.Printf("authcore: failed to touch session %s: %v", sess.ID, err)
	}

	if req.RequireCSRF {
		if req.CSRFToken == "" {
			e.metrics.Validation("csrf_missing")
			e.denyAccess(ctx, req, audit.Event{
				UserID:    user.ID,
				Username:  user.Username,
				SessionID: sess.ID,
				Result:    "csrf_missing",
			})
			return &ValidationResult{ErrorMessage: ErrCSRFMissing.Error()}
		}
		if !csrf.Verify(req.CSRFToken, sess.CSRFToken) {
			e.metrics.Validation("csrf_mismatch")
			e.auditEvent(ctx, audit.Event{
				Type:      audit.EventCSRFAttackDetected,
				Severity:  audit.SeverityCritical,
				UserID:    user.ID,
				Username:  user.Username,
				IPAddress: sess.IPAddress,
				SessionID: sess.ID,
				Resource:  req.Resource,
				Action:    req.Action,
				Result:    "csrf_mismatch",
			})
			return &ValidationResult{ErrorMessage: ErrCSRFMismatch.Error()}
		}
	}

	e.metrics.Validation("ok")
	if req.Resource != "" {
		e.auditEvent(ctx, audit.Event{
			Type:      audit.EventAccessGranted,
			Severity:  audit.SeverityLow,
			UserID:    user.ID,
			Username:  user.Username,
			SessionID: sess.ID,
			Resource:  req.Resource,
			Action:    req.Action,
			Result:    "granted",
		})
	}

	return &ValidationResult{
		Valid:     true,
		User:      user,
		SessionID: sess.ID,
		Claims:    claims,
	}
}

func (e *Engine) denyAccess(ctx context.Context, req ValidateRequest, event audit.Event) {
	event.Type = audit.EventAccessDenied
	if event.Severity == "" {
		event.Severity = audit.SeverityMedium
	}
	event.Resource = req.Resource
	event.Action = req.Action
	e.auditEvent(ctx, event)
}

func (e *Engine) tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired.Error()
	case errors.Is(err, token.ErrWrongType):
		return ErrWrongTokenType.Error()
	default:
		return ErrTokenMalformed.Error()
	}
}

// Refresh exchanges a live refresh token for a new access/refresh
// pair. Refresh tokens are single use: the presented token's ID is
// blacklisted as part of the exchange, so replaying it fails.
func (e *Engine) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResult, error) {
	claims, err := e.tokens.Verify(req.RefreshToken, token.TypeRefresh)
	if err != nil {
		return &RefreshResult{ErrorMessage: e.tokenErrorMessage(err)}, nil
	}

	if e.registry.IsBlacklisted(claims.ID) {
		e.auditEvent(ctx, audit.Event{
			Type:      audit.EventAccessDenied,
			Severity:  audit.SeverityHigh,
			UserID:    claims.Subject,
			SessionID: claims.SessionID,
			Action:    "refresh",
			Result:    "token_revoked",
		})
		return &RefreshResult{ErrorMessage: ErrTokenRevoked.Error()}, nil
	}

	sess, err := e.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return &RefreshResult{ErrorMessage: ErrSessionExpired.Error()}, nil
	}

	user, err := e.repository.FindByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		return &RefreshResult{ErrorMessage: ErrUserNotFound.Error()}, nil
	}
	if !user.Active || user.Status != StatusActive {
		return &RefreshResult{ErrorMessage: ErrAccountDisabled.Error()}, nil
	}

	accessToken, accessJTI, err := e.tokens.IssueAccess(
		user.ID, user.Username, string(user.Role), user.Role.Permissions(), sess.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshJTI, err := e.tokens.IssueRefresh(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}

	e.registry.Track(accessJTI, user.ID, sess.ID)
	e.registry.Track(refreshJTI, user.ID, sess.ID)
	e.registry.Blacklist(claims.ID)

	e.metrics.Refresh()
	e.metrics.Revocations(1)
	e.auditEvent(ctx, audit.Event{
		Type:      audit.EventTokenRefresh,
		Severity:  audit.SeverityLow,
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: sess.ID,
		Result:    "success",
	})

	return &RefreshResult{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    e.config.JWT.AccessTTL,
	}, nil
}

// Logout revokes the token's session and blacklists every token bound
// to it. A second call with the same token reports failure: the token
// is already blacklisted, and nothing beyond the audit entry happens.
func (e *Engine) Logout(ctx context.Context, accessToken string) bool {
	claims, err := e.tokens.Verify(accessToken, token.TypeAccess)
	if err != nil {
		e.auditEvent(ctx, audit.Event{
			Type:     audit.EventLogout,
			Severity: audit.SeverityLow,
			Result:   "failure",
			Details:  map[string]string{"reason": "invalid_token"},
		})
		return false
	}

	if e.registry.IsBlacklisted(claims.ID) {
		e.auditEvent(ctx, audit.Event{
			Type:      audit.EventLogout,
			Severity:  audit.SeverityLow,
			UserID:    claims.Subject,
			Username:  claims.Username,
			SessionID: claims.SessionID,
			Result:    "failure",
			Details:   map[string]string{"reason": "already_logged_out"},
		})
		return false
	}

	if err := e.sessions.Revoke(ctx, claims.SessionID); err != nil {
		log.Printf("authcore: failed to revoke session %s: %v", claims.SessionID, err)
	}
	revoked := e.registry.BlacklistSession(claims.SessionID)
	e.registry.Blacklist(claims.ID)
	e.metrics.Revocations(revoked)

	e.auditEvent(ctx, audit.Event{
		Type:      audit.EventLogout,
		Severity:  audit.SeverityLow,
		UserID:    claims.Subject,
		Username:  claims.Username,
		SessionID: claims.SessionID,
		Result:    "success",
	})
	return true
}

// LogoutAll revokes every session of a user and blacklists all of
// their tracked tokens. It returns how many sessions were live.
func (e *Engine) LogoutAll(ctx context.Context, userID string) (int, error) {
	revoked, err := e.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	blacklisted := e.registry.BlacklistAllForUser(userID)
	e.metrics.Revocations(blacklisted)

	e.auditEvent(ctx, audit.Event{
		Type:     audit.EventLogout,
		Severity: audit.SeverityMedium,
		UserID:   userID,
		Result:   "success",
		Details: map[string]string{
			"scope":            "all_sessions",
			"sessions_revoked": strconv.Itoa(revoked),
		},
	})
	return revoked, nil
}

// ChangePassword verifies the current password, enforces the strength
// policy, rehashes with a fresh salt, and revokes every session and
// token of the user. The returned string is empty on success and
// otherwise lists every unmet policy rule or the failure reason.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (bool, string) {
	user, err := e.repository.FindByID(ctx, userID)
	if err != nil {
		return false, ErrUserNotFound.Error()
	}

	ok, err := e.hasher.Verify(oldPassword, user.PasswordHash, user.Salt)
	if err != nil || !ok {
		e.auditEvent(ctx, audit.Event{
			Type:     audit.EventPasswordChange,
			Severity: audit.SeverityMedium,
			UserID:   user.ID,
			Username: user.Username,
			Result:   "failure",
			Details:  map[string]string{"reason": "current_password_incorrect"},
		})
		return false, "current password is incorrect"
	}

	if issues := password.ValidateStrength(newPassword); len(issues) > 0 {
		return false, strings.Join(issues, "; ")
	}

	hash, salt, err := e.hasher.Hash(newPassword)
	if err != nil {
		return false, "failed to hash password"
	}
	user.PasswordHash = hash
	user.Salt = salt
	if err := e.repository.Update(ctx, user); err != nil {
		return false, "failed to update password"
	}

	// All existing sessions and tokens predate the new credential.
	if _, err := e.sessions.RevokeAll(ctx, user.ID); err != nil {
		log.Printf("authcore: failed to revoke sessions for %s after password change: %v", user.ID, err)
	}
	e.metrics.Revocations(e.registry.BlacklistAllForUser(user.ID))

	e.auditEvent(ctx, audit.Event{
		Type:     audit.EventPasswordChange,
		Severity: audit.SeverityMedium,
		UserID:   user.ID,
		Username: user.Username,
		Result:   "success",
	})
	return true, ""
}

// UnlockAccount clears a user's lockout state ahead of its natural
// expiry. Intended for admin surfaces.
func (e *Engine) UnlockAccount(ctx context.Context, userID string) error {
	user, err := e.repository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = time.Time{}
	if err := e.repository.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	e.auditEvent(ctx, audit.Event{
		Type:     audit.EventAccountUnlocked,
		Severity: audit.SeverityMedium,
		UserID:   user.ID,
		Username: user.Username,
		Result:   "success",
	})
	return nil
}

// SessionsForUser returns the user's live sessions.
func (e *Engine) SessionsForUser(ctx context.Context, userID string) ([]*session.Session, error) {
	return e.sessions.ListActive(ctx, userID)
}

// SecuritySummary aggregates the audit log over the trailing hours.
func (e *Engine) SecuritySummary(hours int) audit.Summary {
	return e.audit.SecuritySummary(hours)
}

// Close stops the maintenance sweeper and records shutdown. Safe to
// call more than once.
func (e *Engine) Close() {
	if e.sweeper != nil {
		e.sweeper.close()
	}
	e.auditEvent(context.Background(), audit.Event{
		Type:     audit.EventSystemShutdown,
		Severity: audit.SeverityLow,
		Result:   "success",
	})
}
