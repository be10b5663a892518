package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type SignOutMessage struct {
	Actor Actor
}

func (e SignOutMessage) Type() string { return "auth.sign_out" }

type SignOutHandler struct {
	sessions SessionStore
	activity ActivitySink
	logger   Logger
}

func NewSignOutHandler(sessions SessionStore) *SignOutHandler {
	return &SignOutHandler{
		sessions: sessions,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *SignOutHandler) WithActivitySink(sink ActivitySink) *SignOutHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *SignOutHandler) WithLogger(logger Logger) *SignOutHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SignOutHandler) Execute(ctx context.Context, event SignOutMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during sign out",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignOutHandler) execute(ctx context.Context, event SignOutMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Actor.Session == nil {
		// signing out without a session is a no-op, not an error
		return nil
	}

	if err := h.sessions.Revoke(ctx, event.Actor.Session.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventSignOut,
		Actor:     event.Actor.Ref(),
		UserID:    event.Actor.User.ID.String(),
	})

	return nil
}
