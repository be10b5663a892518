package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetSessionDuration() int
	GetExtendedSessionDuration() int
	GetIssuer() string
	GetAudience() []string
	GetResetTokenTTL() string
	GetResetBaseURL() string
	GetSignInRoute() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// RequestContext carries the caller supplied credentials into an action.
// Actions never read ambient request state; the HTTP layer extracts the
// session token from cookie or header and hands it over explicitly.
type RequestContext struct {
	Credentials string
}

// SessionStore resolves, issues, and revokes sessions. Resolve is the
// fail-closed read used by every gate: any error yields nil, never a
// partial session.
type SessionStore interface {
	Issue(ctx context.Context, user *User, opts ...SessionIssueOption) (*Session, string, error)
	Resolve(ctx context.Context, credentials string) *Session
	Revoke(ctx context.Context, sessionID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error
}

// TokenService signs and verifies the opaque wire form of a session ID.
type TokenService interface {
	Sign(sessionID uuid.UUID, expiresAt time.Time) (string, error)
	Verify(raw string) (uuid.UUID, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
