package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultResetTokenTTL bounds how long a reset token stays consumable.
var DefaultResetTokenTTL = time.Hour

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (e InitializePasswordResetMessage) Type() string { return "auth.password_reset.initialize" }

// InitializePasswordResetResponse is identical whether or not the email
// maps to an account. Accepted means the request was processed, not
// that a token was issued.
type InitializePasswordResetResponse struct {
	Accepted bool
}

type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	mailer   Mailer
	activity ActivitySink
	logger   Logger
	tokenTTL time.Duration
	baseURL  string
	now      func() time.Time
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:     repo,
		mailer:   normalizeMailer(mailer),
		activity: noopActivitySink{},
		logger:   defLogger{},
		tokenTTL: DefaultResetTokenTTL,
		now:      time.Now,
	}
}

func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) WithTokenTTL(ttl time.Duration) *InitializePasswordResetHandler {
	if ttl > 0 {
		h.tokenTTL = ttl
	}
	return h
}

// WithBaseURL sets the public URL prefix used to build reset links.
func (h *InitializePasswordResetHandler) WithBaseURL(baseURL string) *InitializePasswordResetHandler {
	h.baseURL = strings.TrimRight(baseURL, "/")
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *InitializePasswordResetHandler) WithClock(clock func() time.Time) *InitializePasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var reset *PasswordReset

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// unknown email: same outward response, no token
				h.logger.Debug("password reset requested for unknown email")
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		// the latest token wins: supersede every live one first
		if err := h.repo.PasswordResets().InvalidateActiveForUserTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to invalidate previous reset tokens")
		}

		now := h.now()
		expiresAt := now.Add(h.tokenTTL)

		record := &PasswordReset{
			ID:        uuid.New(),
			UserID:    &user.ID,
			Email:     user.Email,
			ExpiresAt: &expiresAt,
		}

		reset, err = h.repo.PasswordResets().CreateTx(ctx, tx, record)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	if reset != nil {
		h.deliver(ctx, reset)

		recordActivity(ctx, h.activity, h.logger, ActivityEvent{
			EventType: ActivityEventPasswordResetRequest,
			Actor:     ActorRef{ID: reset.UserID.String(), Type: "user"},
			UserID:    reset.UserID.String(),
			Metadata:  map[string]any{"password_reset_id": reset.ID.String()},
		})
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{Accepted: true})
	}

	return nil
}

// deliver hands the token to the mailer. Delivery failures are logged,
// never surfaced, so the response stays identical for every email.
func (h *InitializePasswordResetHandler) deliver(ctx context.Context, reset *PasswordReset) {
	token := reset.ID.String()
	email := ResetEmail{
		To:       reset.Email,
		Token:    token,
		ResetURL: h.baseURL + "/password-reset/" + token,
	}

	if err := h.mailer.SendPasswordReset(ctx, email); err != nil {
		h.logger.Warn("failed to deliver password reset email: %v", err)
	}
}
