package access

import (
	id "acadreg/pkg/domain"
)

// Institution is an entity authorized by the administrator to issue
// credentials. Deauthorization removes the record entirely, so a principal
// without an entry is simply "not authorized, no name" — a later
// re-authorization must supply a fresh name.
type Institution struct {
	Principal  id.Principal
	Name       string
	Authorized bool
}
