package credential

import (
	"context"

	id "acadreg/pkg/domain"
)

// Store holds issued credentials keyed by identifier. Implementations must
// uphold the lifecycle invariants:
//
//   - Insert is the sole creation path and fails with sentinel.ErrConflict
//     when the identifier is already present.
//   - SetValidity is the sole mutation path, only ever valid→invalid;
//     passing valid=true fails with sentinel.ErrInvalidState.
//   - Records are never deleted.
//
// Stores are interface-driven so the in-memory, Postgres, and cached
// implementations can be swapped without touching the facade.
type Store interface {
	Exists(ctx context.Context, credID id.CredentialID) (bool, error)
	Get(ctx context.Context, credID id.CredentialID) (Credential, error)
	Insert(ctx context.Context, cred Credential) error
	SetValidity(ctx context.Context, credID id.CredentialID, valid bool) error
}
