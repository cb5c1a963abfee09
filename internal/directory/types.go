// Package directory owns identities, tenants and the memberships linking
// them. A tenant is the data-isolation boundary every financial record
// belongs to; bootstrap provisions one for an identity that has none.
package directory

import "time"

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Identity is an authenticated principal.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tenant is an isolated data/billing scope owning all business records.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links one identity to one tenant with a role.
type Membership struct {
	TenantID   string    `json:"tenant_id"`
	IdentityID string    `json:"identity_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}
