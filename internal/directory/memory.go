package directory

import (
	"context"
	"strings"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used in
// tests and when no database DSN is configured.
type InMemory struct {
	mu          sync.RWMutex
	identities  map[string]Identity
	byEmail     map[string]string
	tenants     map[string]Tenant
	memberships []Membership
}

// NewInMemory creates an empty directory store.
func NewInMemory() *InMemory {
	return &InMemory{
		identities: make(map[string]Identity),
		byEmail:    make(map[string]string),
		tenants:    make(map[string]Tenant),
	}
}

func (s *InMemory) Identities(ctx context.Context) IdentityStore    { return (*memIdentities)(s) }
func (s *InMemory) Tenants(ctx context.Context) TenantStore         { return (*memTenants)(s) }
func (s *InMemory) Memberships(ctx context.Context) MembershipStore { return (*memMemberships)(s) }

type memIdentities InMemory

func (s *memIdentities) Create(ctx context.Context, id *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(id.Email)
	if _, exists := s.byEmail[email]; exists {
		return ErrAlreadyExists
	}
	s.identities[id.ID] = *id
	s.byEmail[email] = id.ID
	return nil
}

func (s *memIdentities) Find(ctx context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := identity
	return &out, nil
}

func (s *memIdentities) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	identity := s.identities[id]
	out := identity
	return &out, nil
}

type memTenants InMemory

func (s *memTenants) Create(ctx context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenants[t.ID]; exists {
		return ErrAlreadyExists
	}
	s.tenants[t.ID] = *t
	return nil
}

func (s *memTenants) Find(ctx context.Context, id string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := tenant
	return &out, nil
}

type memMemberships InMemory

func (s *memMemberships) Create(ctx context.Context, m *Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.TenantID == m.TenantID && existing.IdentityID == m.IdentityID {
			return ErrAlreadyExists
		}
	}
	s.memberships = append(s.memberships, *m)
	return nil
}

func (s *memMemberships) ListByIdentity(ctx context.Context, identityID string) ([]Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Membership
	for _, m := range s.memberships {
		if m.IdentityID == identityID {
			out = append(out, m)
		}
	}
	return out, nil
}
