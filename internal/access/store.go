package access

import (
	"context"

	id "acadreg/pkg/domain"
)

// Store persists the administrator principal and the authorized-issuer set.
// Only the Service mutates it, so stores do not re-check permissions.
type Store interface {
	// Administrator returns the current administrator, or
	// sentinel.ErrNotFound before bootstrap.
	Administrator(ctx context.Context) (id.Principal, error)
	// SetAdministrator replaces the administrator. No history is kept.
	SetAdministrator(ctx context.Context, admin id.Principal) error

	// FindInstitution returns the institution record, or
	// sentinel.ErrNotFound for unknown principals.
	FindInstitution(ctx context.Context, principal id.Principal) (Institution, error)
	// SaveInstitution creates or replaces the institution record.
	SaveInstitution(ctx context.Context, inst Institution) error
	// RemoveInstitution erases the record, clearing both the authorization
	// flag and the display name.
	RemoveInstitution(ctx context.Context, principal id.Principal) error
}
