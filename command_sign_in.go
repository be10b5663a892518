package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// MaxLoginAttempts is the maximum number of failed attempts a user gets
// inside the cooldown window
var MaxLoginAttempts = 5

// CoolDownPeriod is the window in which failed attempts accumulate
var CoolDownPeriod = "24h"

type SignInMessage struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ExtendedSession bool   `json:"extended_session"`
	OnResponse      func(resp *SignInResponse)
}

func (e SignInMessage) Type() string { return "auth.sign_in" }

type SignInResponse struct {
	Session *Session
	Token   string
	User    *User
}

type SignInHandler struct {
	repo     RepositoryManager
	sessions SessionStore
	activity ActivitySink
	logger   Logger
	extended time.Duration
}

func NewSignInHandler(repo RepositoryManager, sessions SessionStore) *SignInHandler {
	return &SignInHandler{
		repo:     repo,
		sessions: sessions,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *SignInHandler) WithActivitySink(sink ActivitySink) *SignInHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *SignInHandler) WithLogger(logger Logger) *SignInHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithExtendedDuration sets the session lifetime used when the caller
// asks to stay signed in.
func (h *SignInHandler) WithExtendedDuration(d time.Duration) *SignInHandler {
	if d > 0 {
		h.extended = d
	}
	return h
}

func (h *SignInHandler) Execute(ctx context.Context, event SignInMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during sign in",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignInHandler) execute(ctx context.Context, event SignInMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.verifyCredentials(ctx, event.Email, event.Password)
	if err != nil {
		return err
	}

	opts := []SessionIssueOption{}

	// the oldest membership decides the session's organization context
	if membership, err := h.repo.Memberships().FirstForUser(ctx, user.ID); err == nil {
		opts = append(opts, WithActiveOrganization(membership.OrganizationID))
	} else if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve membership during sign in")
	}

	if event.ExtendedSession && h.extended > 0 {
		opts = append(opts, WithSessionDuration(h.extended))
	}

	session, token, err := h.sessions.Issue(ctx, user, opts...)
	if err != nil {
		return err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     ActorRef{ID: user.ID.String(), Type: string(user.Role)},
		UserID:    user.ID.String(),
	})

	if event.OnResponse != nil {
		event.OnResponse(&SignInResponse{
			Session: session,
			Token:   token,
			User:    user,
		})
	}

	return nil
}

// verifyCredentials compares the password and drives the attempt
// counter. Unknown emails and wrong passwords return the same error so
// the endpoint cannot be used to probe for accounts.
func (h *SignInHandler) verifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := h.repo.Users().GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			h.logger.Debug("sign in for unknown identifier")
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during sign in")
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cooldown")
		}
		if expired {
			user.LoginAttempts = 0
		}
	}

	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := h.repo.Users().TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		recordActivity(ctx, h.activity, h.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     ActorRef{ID: user.ID.String(), Type: string(user.Role)},
			UserID:    user.ID.String(),
			Metadata:  map[string]any{"attempts": user.LoginAttempts + 1},
		})

		return nil, ErrMismatchedHashAndPassword
	}

	if err := h.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		h.logger.Error("failed to track successful login: %v", err)
	}

	return user, nil
}
