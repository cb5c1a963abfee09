package finance

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used in
// tests and when no database DSN is configured.
type InMemory struct {
	mu       sync.RWMutex
	entries  []LedgerEntry
	bills    []Bill
	contacts []Contact
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty record store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) CreateEntry(ctx context.Context, e *LedgerEntry) error {
	if err := ValidateEntry(e); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *InMemory) ListEntries(ctx context.Context, tenantID string) ([]LedgerEntry, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LedgerEntry
	for _, e := range s.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *InMemory) CreateBill(ctx context.Context, b *Bill) error {
	if err := ValidateBill(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append(s.bills, *b)
	return nil
}

func (s *InMemory) ListBills(ctx context.Context, tenantID string) ([]Bill, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Bill
	for _, b := range s.bills {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *InMemory) CreateContact(ctx context.Context, c *Contact) error {
	if err := ValidateContact(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s *InMemory) ListContacts(ctx context.Context, tenantID string) ([]Contact, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Contact
	for _, c := range s.contacts {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
