package auth

import (
	"context"
)

// Actor is the authenticated principal handed to gated actions once a
// guard allows the request. Session and User are always non-nil.
type Actor struct {
	Session *Session
	User    *User
	Tier    Tier
}

// Ref maps the actor to its audit identity.
func (a Actor) Ref() ActorRef {
	if a.User == nil {
		return ActorRef{Type: "anonymous"}
	}
	return ActorRef{ID: a.User.ID.String(), Type: string(a.User.Role)}
}

// Authorize compares an actual tier against a required one. Denials
// carry both tiers in metadata for logs while the outward error stays
// indistinguishable from an authentication failure.
func Authorize(required, actual Tier) error {
	if actual.Satisfies(required) {
		return nil
	}
	return ErrInsufficientTier.Clone().WithMetadata(map[string]any{
		"required_tier": required.String(),
		"actual_tier":   actual.String(),
	})
}

// Guard resolves request credentials into an Actor and enforces tier
// requirements. Every gated action funnels through one of its Require
// methods so credential resolution happens exactly once per request.
type Guard struct {
	sessions SessionStore
	resolver *RoleResolver
	logger   Logger
}

func NewGuard(sessions SessionStore, resolver *RoleResolver) *Guard {
	return &Guard{
		sessions: sessions,
		resolver: resolver,
		logger:   defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Resolve classifies the request without enforcing anything. Callers
// that branch on tier (route access checks) use this; callers with a
// hard floor use the Require methods.
func (g *Guard) Resolve(ctx context.Context, req RequestContext) Actor {
	session := g.sessions.Resolve(ctx, req.Credentials)
	if session == nil {
		return Actor{Tier: TierAnonymous}
	}

	tier := g.resolver.ClassifyWithFallback(ctx, session)

	return Actor{
		Session: session,
		User:    session.User,
		Tier:    tier,
	}
}

func (g *Guard) require(ctx context.Context, req RequestContext, required Tier) (Actor, error) {
	actor := g.Resolve(ctx, req)
	if err := Authorize(required, actor.Tier); err != nil {
		g.logger.Debug("access denied: required=%s actual=%s", required, actor.Tier)
		return Actor{}, err
	}
	return actor, nil
}

// RequireAuthenticated admits any caller with a valid session.
func (g *Guard) RequireAuthenticated(ctx context.Context, req RequestContext) (Actor, error) {
	return g.require(ctx, req, TierAuthenticated)
}

// RequireOrgAdminOrOwner admits callers operating in an organization
// context and owners.
func (g *Guard) RequireOrgAdminOrOwner(ctx context.Context, req RequestContext) (Actor, error) {
	return g.require(ctx, req, TierOrgAdmin)
}

// RequireOwner admits owners only.
func (g *Guard) RequireOwner(ctx context.Context, req RequestContext) (Actor, error) {
	return g.require(ctx, req, TierOwner)
}
