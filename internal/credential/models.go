package credential

import (
	id "acadreg/pkg/domain"
)

// Credential is one issued academic attestation. Every field except Valid is
// immutable after issuance. IssuedAt is never zero for a stored record; zero
// is the store's absent sentinel.
type Credential struct {
	ID              id.CredentialID
	StudentName     string
	InstitutionName string
	Degree          string
	Field           string
	GraduationYear  int
	DocumentRef     string
	Valid           bool
	IssuedAt        int64
	Issuer          id.Principal
}

// Exists reports whether the record represents a stored credential rather
// than the absent sentinel.
func (c Credential) Exists() bool {
	return c.IssuedAt != 0
}
