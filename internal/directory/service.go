package directory

import (
	"context"
	"strings"
	"time"

	"dashcomm.org/internal/auth"
	"dashcomm.org/internal/ids"
	"dashcomm.org/internal/obs"
)

// Service provides registration, credential checks and tenant bootstrap on
// top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a directory service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a new identity with a hashed password.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	identities := s.store.Identities(ctx)
	if _, err := identities.FindByEmail(ctx, email); err == nil {
		return nil, auth.ErrAlreadyRegistered
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	identity := &Identity{
		ID:           ids.New(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Authenticate verifies email/password and returns the identity.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}
	identity, err := s.store.Identities(ctx).FindByEmail(ctx, email)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(identity.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return identity, nil
}

// Identity loads an identity by id.
func (s *Service) Identity(ctx context.Context, id string) (*Identity, error) {
	return s.store.Identities(ctx).Find(ctx, id)
}

// Memberships lists the tenants an identity belongs to.
func (s *Service) Memberships(ctx context.Context, identityID string) ([]Membership, error) {
	if strings.TrimSpace(identityID) == "" {
		return nil, ErrInvalidInput
	}
	return s.store.Memberships(ctx).ListByIdentity(ctx, identityID)
}

// EnsureTenant resolves the tenant for an identity, creating one when none
// exists. The membership-existence check always precedes creation, so at
// most one tenant is ever created per identity no matter how often this is
// retried. Returns the tenant id and whether this call created it.
func (s *Service) EnsureTenant(ctx context.Context, identityID, name string) (string, bool, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return "", false, ErrInvalidInput
	}

	memberships, err := s.store.Memberships(ctx).ListByIdentity(ctx, identityID)
	if err != nil {
		obs.ObserveBootstrap("failed")
		return "", false, &ProvisioningError{Step: "lookup", Err: err}
	}
	if len(memberships) > 0 {
		obs.ObserveBootstrap("adopted")
		return memberships[0].TenantID, false, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "My Business"
	}
	now := s.now().UTC()
	tenant := &Tenant{ID: ids.New(), Name: name, CreatedAt: now}
	if err := s.store.Tenants(ctx).Create(ctx, tenant); err != nil {
		obs.ObserveBootstrap("failed")
		return "", false, &ProvisioningError{Step: "create_tenant", Err: err}
	}
	membership := &Membership{
		TenantID:   tenant.ID,
		IdentityID: identityID,
		Role:       RoleOwner,
		CreatedAt:  now,
	}
	if err := s.store.Memberships(ctx).Create(ctx, membership); err != nil {
		obs.ObserveBootstrap("failed")
		return "", false, &ProvisioningError{Step: "create_membership", Err: err}
	}
	obs.ObserveBootstrap("created")
	return tenant.ID, true, nil
}

// BelongsTo reports whether the identity holds a membership in the tenant.
func (s *Service) BelongsTo(ctx context.Context, identityID, tenantID string) (bool, error) {
	memberships, err := s.store.Memberships(ctx).ListByIdentity(ctx, identityID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.TenantID == tenantID {
			return true, nil
		}
	}
	return false, nil
}
