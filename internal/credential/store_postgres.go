package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "acadreg/pkg/domain"
	"acadreg/pkg/platform/sentinel"
)

// PostgresStore persists credentials in PostgreSQL via database/sql
// (pgx stdlib driver).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// credentialsSchema is applied by EnsureSchema. Records are append-only
// except for the valid flag; there is no DELETE path.
const credentialsSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	id               TEXT PRIMARY KEY,
	student_name     TEXT NOT NULL,
	institution_name TEXT NOT NULL,
	degree           TEXT NOT NULL,
	field            TEXT NOT NULL,
	graduation_year  INTEGER NOT NULL,
	document_ref     TEXT NOT NULL,
	valid            BOOLEAN NOT NULL,
	issued_at        BIGINT NOT NULL CHECK (issued_at <> 0),
	issuer           TEXT NOT NULL
)`

// EnsureSchema creates the credentials table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, credentialsSchema); err != nil {
		return fmt.Errorf("ensure credentials schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, credID id.CredentialID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM credentials WHERE id = $1)`, credID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("credential exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Get(ctx context.Context, credID id.CredentialID) (Credential, error) {
	var (
		cred   Credential
		rawID  string
		issuer string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, student_name, institution_name, degree, field,
		       graduation_year, document_ref, valid, issued_at, issuer
		FROM credentials WHERE id = $1`, credID.String(),
	).Scan(&rawID, &cred.StudentName, &cred.InstitutionName, &cred.Degree,
		&cred.Field, &cred.GraduationYear, &cred.DocumentRef, &cred.Valid,
		&cred.IssuedAt, &issuer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, sentinel.ErrNotFound
		}
		return Credential{}, fmt.Errorf("get credential: %w", err)
	}
	cred.ID = id.CredentialID(rawID)
	cred.Issuer = id.Principal(issuer)
	return cred, nil
}

func (s *PostgresStore) Insert(ctx context.Context, cred Credential) error {
	if !cred.Exists() {
		return sentinel.ErrInvalidState
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials
			(id, student_name, institution_name, degree, field,
			 graduation_year, document_ref, valid, issued_at, issuer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		cred.ID.String(), cred.StudentName, cred.InstitutionName, cred.Degree,
		cred.Field, cred.GraduationYear, cred.DocumentRef, cred.Valid,
		cred.IssuedAt, cred.Issuer.String())
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert credential rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) SetValidity(ctx context.Context, credID id.CredentialID, valid bool) error {
	if valid {
		return sentinel.ErrInvalidState
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET valid = FALSE WHERE id = $1`, credID.String())
	if err != nil {
		return fmt.Errorf("set credential validity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set credential validity rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
