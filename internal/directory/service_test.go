package directory

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureTenantCreatesOnce(t *testing.T) {
	svc := NewService(NewInMemory())
	ctx := context.Background()

	identity, err := svc.Register(ctx, "seller@example.com", "hunter22", "Seller")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, created, err := svc.EnsureTenant(ctx, identity.ID, "Acme Store")
	if err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the tenant")
	}

	second, created, err := svc.EnsureTenant(ctx, identity.ID, "Another Name")
	if err != nil {
		t.Fatalf("EnsureTenant (second): %v", err)
	}
	if created {
		t.Fatal("second call must not create another tenant")
	}
	if second != first {
		t.Fatalf("tenant id changed across calls: %s != %s", second, first)
	}

	memberships, err := svc.Memberships(ctx, identity.ID)
	if err != nil {
		t.Fatalf("Memberships: %v", err)
	}
	if len(memberships) != 1 {
		t.Fatalf("expected exactly one membership, got %d", len(memberships))
	}
	if memberships[0].Role != RoleOwner {
		t.Fatalf("expected owner role, got %s", memberships[0].Role)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemory())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "seller@example.com", "hunter22", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "Seller@Example.com", "hunter22"); err != nil {
		t.Fatalf("Authenticate with correct password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "seller@example.com", "wrong"); err == nil {
		t.Fatal("expected failure for wrong password")
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter22"); err == nil {
		t.Fatal("expected failure for unknown email")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewInMemory())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "seller@example.com", "hunter22", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "SELLER@example.com", "other", ""); err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
}

type failingMemberships struct {
	MembershipStore
	failCreate bool
}

func (f *failingMemberships) Create(ctx context.Context, m *Membership) error {
	if f.failCreate {
		return errors.New("boom")
	}
	return f.MembershipStore.Create(ctx, m)
}

func (f *failingMemberships) ListByIdentity(ctx context.Context, identityID string) ([]Membership, error) {
	return f.MembershipStore.ListByIdentity(ctx, identityID)
}

type wrappedStore struct {
	Store
	memberships MembershipStore
}

func (w *wrappedStore) Memberships(ctx context.Context) MembershipStore { return w.memberships }

func TestEnsureTenantSurfacesProvisioningError(t *testing.T) {
	mem := NewInMemory()
	store := &wrappedStore{
		Store:       mem,
		memberships: &failingMemberships{MembershipStore: mem.Memberships(context.Background()), failCreate: true},
	}
	svc := NewService(store)
	ctx := context.Background()

	identity, err := svc.Register(ctx, "seller@example.com", "hunter22", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	id, created, err := svc.EnsureTenant(ctx, identity.ID, "Acme")
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("expected ErrProvisioning, got %v", err)
	}
	if id != "" || created {
		t.Fatalf("must not report a tenant on failure: id=%q created=%v", id, created)
	}
}
