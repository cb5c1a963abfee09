package client

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"dashcomm.org/internal/finance"
	"dashcomm.org/internal/reconcile"
	"dashcomm.org/internal/report"
)

// recordCache holds the last fetched record lists. Writes are merged in
// place so a just-created record is visible before the next refetch.
type recordCache struct {
	entries  []finance.LedgerEntry
	bills    []finance.Bill
	contacts []finance.Contact
}

func (c *Client) clearCaches() {
	c.cacheMu.Lock()
	c.cache = recordCache{}
	c.cacheMu.Unlock()
}

// Transactions fetches the ledger entries of the active workspace and
// refreshes the cache.
func (c *Client) Transactions(ctx context.Context) ([]finance.LedgerEntry, error) {
	var out struct {
		Transactions []finance.LedgerEntry `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/transactions", nil, &out, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.entries = out.Transactions
	c.cacheMu.Unlock()
	return out.Transactions, nil
}

// CachedTransactions returns the last fetched list without a network call.
func (c *Client) CachedTransactions() []finance.LedgerEntry {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	return c.cache.entries
}

// NewTransaction is the write payload for RecordTransaction.
type NewTransaction struct {
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	AmountGross int64     `json:"amount_gross"`
	AmountNet   int64     `json:"amount_net,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
}

// RecordTransaction posts a ledger entry and merges the server's version
// into the cache.
func (c *Client) RecordTransaction(ctx context.Context, tx NewTransaction) (*finance.LedgerEntry, error) {
	var created finance.LedgerEntry
	if err := c.do(ctx, http.MethodPost, "/v1/transactions", tx, &created, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.entries = reconcile.Merge(c.cache.entries, created, func(e finance.LedgerEntry) string { return e.ID })
	c.cacheMu.Unlock()
	return &created, nil
}

// Bills fetches the bills of the active workspace and refreshes the cache.
func (c *Client) Bills(ctx context.Context) ([]finance.Bill, error) {
	var out struct {
		Bills []finance.Bill `json:"bills"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/bills", nil, &out, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.bills = out.Bills
	c.cacheMu.Unlock()
	return out.Bills, nil
}

// NewBill is the write payload for RecordBill.
type NewBill struct {
	DueDate      time.Time `json:"due_date"`
	TotalAmount  int64     `json:"total_amount"`
	Status       string    `json:"status,omitempty"`
	Board        string    `json:"board"`
	Installments int       `json:"installments,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// RecordBill posts a bill and merges the server's version into the cache.
func (c *Client) RecordBill(ctx context.Context, b NewBill) (*finance.Bill, error) {
	var created finance.Bill
	if err := c.do(ctx, http.MethodPost, "/v1/bills", b, &created, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.bills = reconcile.Merge(c.cache.bills, created, func(b finance.Bill) string { return b.ID })
	c.cacheMu.Unlock()
	return &created, nil
}

// Contacts fetches the contacts of the active workspace.
func (c *Client) Contacts(ctx context.Context) ([]finance.Contact, error) {
	var out struct {
		Contacts []finance.Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/contacts", nil, &out, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.contacts = out.Contacts
	c.cacheMu.Unlock()
	return out.Contacts, nil
}

// NewContact is the write payload for CreateContact.
type NewContact struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CreateContact posts a contact and merges the server's version into the
// cache.
func (c *Client) CreateContact(ctx context.Context, nc NewContact) (*finance.Contact, error) {
	var created finance.Contact
	if err := c.do(ctx, http.MethodPost, "/v1/contacts", nc, &created, true); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache.contacts = reconcile.Merge(c.cache.contacts, created, func(ct finance.Contact) string { return ct.ID })
	c.cacheMu.Unlock()
	return &created, nil
}

// Summary is the dashboard headline card set.
type Summary struct {
	AsOf              time.Time `json:"as_of"`
	MonthRevenue      int64     `json:"month_revenue"`
	MonthExpenses     int64     `json:"month_expenses"`
	RevenueDelta      float64   `json:"revenue_delta"`
	ExpensesDelta     float64   `json:"expenses_delta"`
	PendingReceivable int64     `json:"pending_receivable"`
	PendingPayable    int64     `json:"pending_payable"`
	NewCustomers      int       `json:"new_customers"`
}

// DashboardSummary fetches the server-computed summary.
func (c *Client) DashboardSummary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard/summary", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cashflow fetches the daily inflow/outflow buckets for the trailing
// window.
func (c *Client) Cashflow(ctx context.Context, days int) ([]report.DayBucket, error) {
	var out struct {
		Buckets []report.DayBucket `json:"buckets"`
	}
	path := "/v1/dashboard/cashflow?days=" + strconv.Itoa(days)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Buckets, nil
}

// UpcomingBills fetches pending bills due within the given number of days.
func (c *Client) UpcomingBills(ctx context.Context, days int) ([]finance.Bill, error) {
	var out struct {
		Bills []finance.Bill `json:"bills"`
	}
	path := "/v1/bills/upcoming?days=" + strconv.Itoa(days)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Bills, nil
}
