package directory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Identities(ctx context.Context) IdentityStore    { return &pgIdentities{db: s.db} }
func (s *PGStore) Tenants(ctx context.Context) TenantStore         { return &pgTenants{db: s.db} }
func (s *PGStore) Memberships(ctx context.Context) MembershipStore { return &pgMemberships{db: s.db} }

// Identity store ----------------------------------------------------------

type pgIdentities struct{ db *sql.DB }

func (s *pgIdentities) Create(ctx context.Context, id *Identity) error {
	_, err := s.db.ExecContext(ctx,
		`insert into identities(id, email, display_name, password_hash, created_at)
		 values($1,$2,$3,$4,$5)`,
		id.ID, strings.ToLower(id.Email), id.DisplayName, id.PasswordHash, id.CreatedAt,
	)
	return err
}

func (s *pgIdentities) Find(ctx context.Context, id string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, display_name, password_hash, created_at
		 from identities where id=$1`, id,
	)
	return scanIdentity(row)
}

func (s *pgIdentities) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, display_name, password_hash, created_at
		 from identities where email=$1`, strings.ToLower(email),
	)
	return scanIdentity(row)
}

func scanIdentity(row *sql.Row) (*Identity, error) {
	var identity Identity
	err := row.Scan(&identity.ID, &identity.Email, &identity.DisplayName,
		&identity.PasswordHash, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Tenant store ------------------------------------------------------------

type pgTenants struct{ db *sql.DB }

func (s *pgTenants) Create(ctx context.Context, t *Tenant) error {
	_, err := s.db.ExecContext(ctx,
		`insert into tenants(id, name, created_at) values($1,$2,$3)`,
		t.ID, t.Name, t.CreatedAt,
	)
	return err
}

func (s *pgTenants) Find(ctx context.Context, id string) (*Tenant, error) {
	var tenant Tenant
	err := s.db.QueryRowContext(ctx,
		`select id, name, created_at from tenants where id=$1`, id,
	).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Membership store --------------------------------------------------------

type pgMemberships struct{ db *sql.DB }

func (s *pgMemberships) Create(ctx context.Context, m *Membership) error {
	_, err := s.db.ExecContext(ctx,
		`insert into memberships(tenant_id, identity_id, role, created_at)
		 values($1,$2,$3,$4)`,
		m.TenantID, m.IdentityID, m.Role, m.CreatedAt,
	)
	return err
}

func (s *pgMemberships) ListByIdentity(ctx context.Context, identityID string) ([]Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`select tenant_id, identity_id, role, created_at
		 from memberships where identity_id=$1 order by created_at`, identityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.TenantID, &m.IdentityID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
