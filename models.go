package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsOwner reports whether the user holds the global owner role.
func (u *User) IsOwner() bool {
	return u != nil && u.Role == RoleOwner
}

// Organization is a tenant. Created only by owners; the slug is the
// URL-safe unique handle.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Logo          string     `bun:"logo" json:"logo,omitempty"`
	CreatorID     uuid.UUID  `bun:"creator_id,notnull,type:uuid" json:"creator_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// MembershipRole is the user's role inside one organization
type MembershipRole = string

const (
	// MembershipRoleAdmin administers a single organization
	MembershipRoleAdmin MembershipRole = "admin"
	// MembershipRoleOwner is the implicit role of the org creator
	MembershipRoleOwner MembershipRole = "owner"
)

// Membership joins a User to an Organization with a scoped role.
type Membership struct {
	bun.BaseModel  `bun:"table:memberships,alias:mem"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User           *User          `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	OrganizationID uuid.UUID      `bun:"organization_id,notnull,type:uuid" json:"organization_id,omitempty"`
	Organization   *Organization  `bun:"rel:has-one,join:organization_id=id" json:"organization,omitempty"`
	Role           MembershipRole `bun:"member_role,notnull" json:"member_role,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Session is the server side session record. The cookie only carries a
// signed pointer to this row, so revocation is immediate.
type Session struct {
	bun.BaseModel        `bun:"table:sessions,alias:ses"`
	ID                   uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID               uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User                 *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	ActiveOrganizationID *uuid.UUID `bun:"active_organization_id,nullzero,type:uuid" json:"active_organization_id,omitempty"`
	IssuedAt             *time.Time `bun:"issued_at,nullzero" json:"issued_at,omitempty"`
	ExpiresAt            *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	RevokedAt            *time.Time `bun:"revoked_at,nullzero" json:"revoked_at,omitempty"`
	CreatedAt            *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsExpired reports whether the session lifetime lapsed at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return true
	}
	return now.After(*s.ExpiresAt)
}

// IsRevoked reports whether the session was explicitly ended.
func (s *Session) IsRevoked() bool {
	return s == nil || s.RevokedAt != nil
}

// PasswordReset is a single-use, time-bounded reset token. The row ID is
// the opaque token mailed to the user.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	ExpiresAt     *time.Time `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	InvalidatedAt *time.Time `bun:"invalidated_at,nullzero" json:"invalidated_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// MarkResetConsumed will create an update record for a consumed token
func MarkResetConsumed(id uuid.UUID, at time.Time) *PasswordReset {
	r := &PasswordReset{}
	r.ID = id
	r.ConsumedAt = &at
	return r
}
