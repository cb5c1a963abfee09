package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"dashcomm.org/internal/finance"
)

func TestListEntriesScopesByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "entry_date", "kind", "amount_gross", "amount_net", "status", "description", "created_at",
	}).AddRow("e1", "t1", created, finance.KindInflow, int64(110), int64(100), finance.StatusPaid, "sale", created)

	mock.ExpectQuery(`(?s)select id, tenant_id, entry_date, kind.*from ledger_entries.*where tenant_id=\$1`).
		WithArgs("t1").
		WillReturnRows(rows)

	store := NewStore(db)
	entries, err := store.ListEntries(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" || entries[0].AmountNet != 100 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListEntriesRejectsMissingTenant(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	if _, err := store.ListEntries(context.Background(), ""); err != finance.ErrMissingTenant {
		t.Fatalf("expected ErrMissingTenant, got %v", err)
	}
}

func TestCreateBill(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into bills").
		WithArgs("b1", "t1", sqlmock.AnyArg(), int64(250), finance.BillPending,
			finance.BoardPayable, 0, "hosting", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	bill := &finance.Bill{
		ID:          "b1",
		TenantID:    "t1",
		DueDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: 250,
		Status:      finance.BillPending,
		Board:       finance.BoardPayable,
		Description: "hosting",
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateRejectsInvalidInputBeforeDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// No expectations registered: a bad write must fail with the sentinel
	// before any SQL is issued, same as the in-memory store.
	store := NewStore(db)
	ctx := context.Background()

	err = store.CreateEntry(ctx, &finance.LedgerEntry{
		ID: "e1", TenantID: "t1", Kind: "sideways",
		AmountGross: 10, AmountNet: 10, Status: finance.StatusPaid,
	})
	if !errors.Is(err, finance.ErrInvalidKind) {
		t.Fatalf("CreateEntry: got %v, want ErrInvalidKind", err)
	}

	err = store.CreateBill(ctx, &finance.Bill{
		ID: "b1", TenantID: "t1", TotalAmount: -5,
		Status: finance.BillPending, Board: finance.BoardPayable,
	})
	if !errors.Is(err, finance.ErrInvalidAmount) {
		t.Fatalf("CreateBill: got %v, want ErrInvalidAmount", err)
	}

	err = store.CreateContact(ctx, &finance.Contact{
		ID: "c1", TenantID: "t1", Type: "partner", Name: "Acme",
	})
	if !errors.Is(err, finance.ErrInvalidType) {
		t.Fatalf("CreateContact: got %v, want ErrInvalidType", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListContacts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "contact_type", "name", "email", "created_at"}).
		AddRow("c1", "t1", finance.ContactCustomer, "Alice", "alice@example.com", created).
		AddRow("c2", "t1", finance.ContactVendor, "Bob Supplies", "", created.Add(time.Hour))

	mock.ExpectQuery("(?s)select id, tenant_id, contact_type, name, email, created_at.*from contacts").
		WithArgs("t1").
		WillReturnRows(rows)

	store := NewStore(db)
	contacts, err := store.ListContacts(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 2 || contacts[0].Name != "Alice" || contacts[1].Type != finance.ContactVendor {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
