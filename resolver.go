package auth

import (
	"context"
)

// RoleResolver classifies a resolved session into an effective tier.
//
// Classification is cheap by default: it reads only the session row and
// its user. The membership fallback hits storage and is consulted only
// when the fast path stops at the authenticated tier, so owners and
// sessions with an active organization never pay for the extra query.
type RoleResolver struct {
	memberships Memberships
	logger      Logger
}

func NewRoleResolver(memberships Memberships) *RoleResolver {
	return &RoleResolver{
		memberships: memberships,
		logger:      defLogger{},
	}
}

func (r *RoleResolver) WithLogger(logger Logger) *RoleResolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Classify derives the caller's tier from the session alone, without
// touching storage. A nil session or a session without its user is
// anonymous.
func (r *RoleResolver) Classify(session *Session) Tier {
	if session == nil || session.User == nil {
		return TierAnonymous
	}

	if session.User.IsOwner() {
		return TierOwner
	}

	if session.ActiveOrganizationID != nil {
		return TierOrgAdmin
	}

	return TierAuthenticated
}

// ClassifyWithFallback classifies the session and, when the fast path
// yields only the authenticated tier, checks whether the user holds any
// organization membership and promotes them to org admin if so. Lookup
// failures degrade to the fast-path tier rather than failing the caller.
func (r *RoleResolver) ClassifyWithFallback(ctx context.Context, session *Session) Tier {
	tier := r.Classify(session)
	if tier != TierAuthenticated {
		return tier
	}

	if r.memberships == nil {
		return tier
	}

	hasAny, err := r.memberships.HasAnyForUser(ctx, session.UserID)
	if err != nil {
		r.logger.Warn("membership fallback lookup failed: %v", err)
		return tier
	}

	if hasAny {
		return TierOrgAdmin
	}

	return tier
}
