package auth

// UserRole is the user's global role
type UserRole string

const (
	// RoleUser is a regular authenticated user
	RoleUser UserRole = "user"
	// RoleAdmin is an organization scoped administrator
	RoleAdmin UserRole = "admin"
	// RoleOwner is the global owner tier
	RoleOwner UserRole = "owner"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
		RoleOwner,
	}
}

// Tier is the caller's effective privilege level, derived from a session.
// Tiers are ordered: every tier satisfies itself and everything below it.
type Tier int

const (
	// TierAnonymous is a caller with no session
	TierAnonymous Tier = iota
	// TierAuthenticated is any caller with a valid session
	TierAuthenticated
	// TierOrgAdmin is a caller operating inside an organization context
	TierOrgAdmin
	// TierOwner is the global owner tier, satisfies every requirement
	TierOwner
)

// String implements fmt.Stringer for logging and error metadata.
func (t Tier) String() string {
	switch t {
	case TierAnonymous:
		return "anonymous"
	case TierAuthenticated:
		return "authenticated"
	case TierOrgAdmin:
		return "org_admin"
	case TierOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Satisfies reports whether this tier meets the required tier.
func (t Tier) Satisfies(required Tier) bool {
	return t >= required
}
