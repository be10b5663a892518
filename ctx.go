package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var actorCtxKey = &contextKey{"actor"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithActorContext sets the resolved Actor in the given context
func WithActorContext(r context.Context, actor Actor) context.Context {
	return context.WithValue(r, actorCtxKey, actor)
}

// ActorFromContext extracts the Actor from the standard context
func ActorFromContext(ctx context.Context) (Actor, bool) {
	raw, ok := ctx.Value(actorCtxKey).(Actor)
	return raw, ok
}

// ActorFromRouter extracts the resolved Actor from the router context
func ActorFromRouter(ctx router.Context, key string) (Actor, bool) {
	if key == "" {
		key = "actor"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return Actor{}, false
	}
	actor, ok := raw.(Actor)
	return actor, ok
}

// TierFromContext is a convenience to read the caller's effective tier.
// Callers without a resolved actor are anonymous.
func TierFromContext(ctx context.Context) Tier {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return TierAnonymous
	}
	return actor.Tier
}
