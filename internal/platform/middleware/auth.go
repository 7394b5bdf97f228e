package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "acadreg/pkg/domain"
)

// PrincipalValidator validates a bearer token and returns the principal the
// substrate authenticated. The registry trusts this identity without further
// verification.
type PrincipalValidator interface {
	ValidateToken(tokenString string) (id.Principal, error)
}

type contextKeyPrincipal struct{}

// ContextKeyPrincipal is exported for use in tests.
var ContextKeyPrincipal = contextKeyPrincipal{}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(ctx context.Context) id.Principal {
	principal, ok := ctx.Value(ContextKeyPrincipal).(id.Principal)
	if !ok {
		return id.NilPrincipal
	}
	return principal
}

// WithPrincipal returns a context carrying the given principal. Used by the
// middleware and by tests that bypass it.
func WithPrincipal(ctx context.Context, principal id.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, principal)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated principal in the request context.
func RequireAuth(validator PrincipalValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
