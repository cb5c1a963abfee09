// Package pg persists tenant-scoped financial records in PostgreSQL.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dashcomm.org/internal/finance"
)

// Store implements finance.Store on top of PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ finance.Store = (*Store)(nil)

// Open connects to the database and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) CreateEntry(ctx context.Context, e *finance.LedgerEntry) error {
	if err := finance.ValidateEntry(e); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		insert into ledger_entries(id, tenant_id, entry_date, kind, amount_gross, amount_net, status, description, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, e.TenantID, e.Date, e.Kind, e.AmountGross, e.AmountNet, e.Status, e.Description, e.CreatedAt)
	return err
}

func (s *Store) ListEntries(ctx context.Context, tenantID string) ([]finance.LedgerEntry, error) {
	if tenantID == "" {
		return nil, finance.ErrMissingTenant
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, tenant_id, entry_date, kind, amount_gross, amount_net, status, description, created_at
		from ledger_entries
		where tenant_id=$1
		order by entry_date, id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.LedgerEntry
	for rows.Next() {
		var e finance.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Date, &e.Kind, &e.AmountGross,
			&e.AmountNet, &e.Status, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateBill(ctx context.Context, b *finance.Bill) error {
	if err := finance.ValidateBill(b); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		insert into bills(id, tenant_id, due_date, total_amount, status, board, installments, description, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, b.ID, b.TenantID, b.DueDate, b.TotalAmount, b.Status, b.Board, b.Installments, b.Description, b.CreatedAt)
	return err
}

func (s *Store) ListBills(ctx context.Context, tenantID string) ([]finance.Bill, error) {
	if tenantID == "" {
		return nil, finance.ErrMissingTenant
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, tenant_id, due_date, total_amount, status, board, installments, description, created_at
		from bills
		where tenant_id=$1
		order by due_date, id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Bill
	for rows.Next() {
		var b finance.Bill
		if err := rows.Scan(&b.ID, &b.TenantID, &b.DueDate, &b.TotalAmount, &b.Status,
			&b.Board, &b.Installments, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) CreateContact(ctx context.Context, c *finance.Contact) error {
	if err := finance.ValidateContact(c); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		insert into contacts(id, tenant_id, contact_type, name, email, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.TenantID, c.Type, c.Name, c.Email, c.CreatedAt)
	return err
}

func (s *Store) ListContacts(ctx context.Context, tenantID string) ([]finance.Contact, error) {
	if tenantID == "" {
		return nil, finance.ErrMissingTenant
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, tenant_id, contact_type, name, email, created_at
		from contacts
		where tenant_id=$1
		order by created_at, id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []finance.Contact
	for rows.Next() {
		var c finance.Contact
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Type, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
