package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultSessionDuration applies when Config supplies no value.
var DefaultSessionDuration = 24 * time.Hour

// SessionIssueOption customizes a session at issuance time.
type SessionIssueOption func(*sessionIssueOptions)

type sessionIssueOptions struct {
	activeOrganizationID *uuid.UUID
	duration             time.Duration
}

// WithActiveOrganization binds the session to an organization context,
// which is what promotes the caller to the org-admin tier.
func WithActiveOrganization(id uuid.UUID) SessionIssueOption {
	return func(o *sessionIssueOptions) {
		if id != uuid.Nil {
			o.activeOrganizationID = &id
		}
	}
}

// WithSessionDuration overrides the session lifetime.
func WithSessionDuration(d time.Duration) SessionIssueOption {
	return func(o *sessionIssueOptions) {
		if d > 0 {
			o.duration = d
		}
	}
}

type sessionStore struct {
	sessions Sessions
	tokens   TokenService
	duration time.Duration
	logger   Logger
	now      func() time.Time
}

var _ SessionStore = (*sessionStore)(nil)

// NewSessionStore builds the fail-closed session adapter used by every
// gate and by the dispatcher.
func NewSessionStore(sessions Sessions, tokens TokenService) *sessionStore {
	return &sessionStore{
		sessions: sessions,
		tokens:   tokens,
		duration: DefaultSessionDuration,
		logger:   defLogger{},
		now:      time.Now,
	}
}

func (s *sessionStore) WithLogger(logger Logger) *sessionStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *sessionStore) WithDuration(d time.Duration) *sessionStore {
	if d > 0 {
		s.duration = d
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *sessionStore) WithClock(clock func() time.Time) *sessionStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Issue persists a new session for the user and returns it along with
// its signed wire token.
func (s *sessionStore) Issue(ctx context.Context, user *User, opts ...SessionIssueOption) (*Session, string, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, "", goerrors.New("cannot issue session without a user", goerrors.CategoryBadInput)
	}

	options := &sessionIssueOptions{duration: s.duration}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	now := s.now()
	expiresAt := now.Add(options.duration)

	session := &Session{
		ID:                   uuid.New(),
		UserID:               user.ID,
		User:                 user,
		ActiveOrganizationID: options.activeOrganizationID,
		IssuedAt:             &now,
		ExpiresAt:            &expiresAt,
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}
	created.User = user

	token, err := s.tokens.Sign(created.ID, expiresAt)
	if err != nil {
		return nil, "", err
	}

	return created, token, nil
}

// Resolve maps request credentials to a session or nil. It fails closed:
// bad token, missing row, revoked or expired session, or any storage
// error all yield nil, never a partial session.
func (s *sessionStore) Resolve(ctx context.Context, credentials string) *Session {
	if credentials == "" {
		return nil
	}

	id, err := s.tokens.Verify(credentials)
	if err != nil {
		s.logger.Debug("session resolve rejected token: %v", err)
		return nil
	}

	session, err := s.sessions.GetActiveByID(ctx, id)
	if err != nil {
		s.logger.Debug("session resolve lookup failed: %v", err)
		return nil
	}

	if session.User == nil || session.IsExpired(s.now()) {
		return nil
	}

	return session
}

func (s *sessionStore) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *sessionStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except ...uuid.UUID) error {
	return s.sessions.RevokeAllForUser(ctx, userID, except...)
}
