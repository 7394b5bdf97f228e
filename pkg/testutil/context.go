package testutil

import (
	"net/http"

	"acadreg/internal/platform/middleware"
	id "acadreg/pkg/domain"
)

// WithPrincipal stores an authenticated principal on the request context,
// simulating what the auth middleware does for handlers tested in isolation.
func WithPrincipal(req *http.Request, principal id.Principal) *http.Request {
	ctx := middleware.WithPrincipal(req.Context(), principal)
	return req.WithContext(ctx)
}
