package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "acadreg/pkg/domain"
	"acadreg/pkg/platform/sentinel"
)

// PostgresStore persists institutions and the administrator in PostgreSQL.
// The administrator lives in a single-row table; SetAdministrator upserts it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accessSchema = `
CREATE TABLE IF NOT EXISTS institutions (
	principal  TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	authorized BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS registry_admin (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	principal TEXT NOT NULL
)`

// EnsureSchema creates the access tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, accessSchema); err != nil {
		return fmt.Errorf("ensure access schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Administrator(ctx context.Context) (id.Principal, error) {
	var principal string
	err := s.db.QueryRowContext(ctx, `SELECT principal FROM registry_admin`).Scan(&principal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.NilPrincipal, sentinel.ErrNotFound
		}
		return id.NilPrincipal, fmt.Errorf("get administrator: %w", err)
	}
	return id.Principal(principal), nil
}

func (s *PostgresStore) SetAdministrator(ctx context.Context, admin id.Principal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registry_admin (singleton, principal) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET principal = EXCLUDED.principal`,
		admin.String())
	if err != nil {
		return fmt.Errorf("set administrator: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindInstitution(ctx context.Context, principal id.Principal) (Institution, error) {
	var (
		inst Institution
		raw  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT principal, name, authorized FROM institutions WHERE principal = $1`,
		principal.String(),
	).Scan(&raw, &inst.Name, &inst.Authorized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Institution{}, sentinel.ErrNotFound
		}
		return Institution{}, fmt.Errorf("find institution: %w", err)
	}
	inst.Principal = id.Principal(raw)
	return inst, nil
}

func (s *PostgresStore) SaveInstitution(ctx context.Context, inst Institution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institutions (principal, name, authorized) VALUES ($1, $2, $3)
		ON CONFLICT (principal) DO UPDATE SET name = EXCLUDED.name, authorized = EXCLUDED.authorized`,
		inst.Principal.String(), inst.Name, inst.Authorized)
	if err != nil {
		return fmt.Errorf("save institution: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveInstitution(ctx context.Context, principal id.Principal) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM institutions WHERE principal = $1`, principal.String())
	if err != nil {
		return fmt.Errorf("remove institution: %w", err)
	}
	return nil
}
