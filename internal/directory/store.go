package directory

import "context"

// Store describes persistence operations required by the directory.
type Store interface {
	Identities(ctx context.Context) IdentityStore
	Tenants(ctx context.Context) TenantStore
	Memberships(ctx context.Context) MembershipStore
}

// IdentityStore manages identities.
type IdentityStore interface {
	Create(ctx context.Context, id *Identity) error
	Find(ctx context.Context, id string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
}

// TenantStore manages tenants.
type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	Find(ctx context.Context, id string) (*Tenant, error)
}

// MembershipStore manages identity-tenant links.
type MembershipStore interface {
	Create(ctx context.Context, m *Membership) error
	ListByIdentity(ctx context.Context, identityID string) ([]Membership, error)
}
