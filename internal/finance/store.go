package finance

import "context"

// Store persists tenant-scoped records. Every read takes a tenant id; the
// service never issues an unscoped query.
type Store interface {
	CreateEntry(ctx context.Context, e *LedgerEntry) error
	ListEntries(ctx context.Context, tenantID string) ([]LedgerEntry, error)

	CreateBill(ctx context.Context, b *Bill) error
	ListBills(ctx context.Context, tenantID string) ([]Bill, error)

	CreateContact(ctx context.Context, c *Contact) error
	ListContacts(ctx context.Context, tenantID string) ([]Contact, error)
}
