// Package finance owns the tenant-scoped business records of the dashboard:
// ledger entries (cash movements), bills (payables/receivables) and
// contacts (customers/vendors).
package finance

import (
	"errors"
	"time"
)

// Amounts are minor units (cents). No floats in stored money.

// Entry kinds.
const (
	KindInflow  = "inflow"
	KindOutflow = "outflow"
)

// Entry statuses.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusReceived = "received"
)

// Bill statuses.
const (
	BillPending   = "pending"
	BillCompleted = "completed"
	BillOverdue   = "overdue"
)

// Bill boards.
const (
	BoardPayable    = "payable"
	BoardReceivable = "receivable"
)

// Contact types.
const (
	ContactCustomer = "customer"
	ContactVendor   = "vendor"
)

// LedgerEntry is a single financial movement recorded against a tenant.
type LedgerEntry struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	AmountGross int64     `json:"amount_gross"`
	AmountNet   int64     `json:"amount_net"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bill is a scheduled payable or receivable obligation.
type Bill struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	DueDate      time.Time `json:"due_date"`
	TotalAmount  int64     `json:"total_amount"`
	Status       string    `json:"status"`
	Board        string    `json:"board"`
	Installments int       `json:"installments,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contact is a customer or vendor of the tenant.
type Contact struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNotFound      = errors.New("finance: not found")
	ErrInvalidAmount = errors.New("finance: invalid amount")
	ErrInvalidKind   = errors.New("finance: invalid kind")
	ErrInvalidStatus = errors.New("finance: invalid status")
	ErrInvalidBoard  = errors.New("finance: invalid board")
	ErrInvalidType   = errors.New("finance: invalid contact type")
	ErrMissingTenant = errors.New("finance: tenant id is required")
)

// ValidKind reports whether k is a known entry kind.
func ValidKind(k string) bool { return k == KindInflow || k == KindOutflow }

// ValidEntryStatus reports whether s is a known entry status.
func ValidEntryStatus(s string) bool {
	return s == StatusPending || s == StatusPaid || s == StatusReceived
}

// ValidBillStatus reports whether s is a known bill status.
func ValidBillStatus(s string) bool {
	return s == BillPending || s == BillCompleted || s == BillOverdue
}

// ValidBoard reports whether b is a known bill board.
func ValidBoard(b string) bool { return b == BoardPayable || b == BoardReceivable }

// ValidContactType reports whether t is a known contact type.
func ValidContactType(t string) bool { return t == ContactCustomer || t == ContactVendor }

// ValidateEntry checks a ledger entry before it is persisted. Every Store
// implementation must apply it so a bad write fails the same way on every
// backend.
func ValidateEntry(e *LedgerEntry) error {
	if e.TenantID == "" {
		return ErrMissingTenant
	}
	if !ValidKind(e.Kind) {
		return ErrInvalidKind
	}
	if !ValidEntryStatus(e.Status) {
		return ErrInvalidStatus
	}
	if e.AmountNet < 0 || e.AmountGross < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateBill checks a bill before it is persisted.
func ValidateBill(b *Bill) error {
	if b.TenantID == "" {
		return ErrMissingTenant
	}
	if !ValidBillStatus(b.Status) {
		return ErrInvalidStatus
	}
	if !ValidBoard(b.Board) {
		return ErrInvalidBoard
	}
	if b.TotalAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateContact checks a contact before it is persisted.
func ValidateContact(c *Contact) error {
	if c.TenantID == "" {
		return ErrMissingTenant
	}
	if !ValidContactType(c.Type) {
		return ErrInvalidType
	}
	return nil
}
