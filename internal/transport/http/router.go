package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"acadreg/internal/access"
	"acadreg/internal/credential"
	"acadreg/internal/platform/metrics"
	"acadreg/internal/platform/middleware"
	"acadreg/internal/registry"
	id "acadreg/pkg/domain"
)

// RegistryService is the facade surface the transport depends on. It is an
// interface so handler tests can substitute fakes without real stores.
type RegistryService interface {
	IssueCredential(ctx context.Context, caller id.Principal, req registry.IssueRequest) (id.CredentialID, error)
	VerifyCredential(ctx context.Context, credID id.CredentialID) (credential.Credential, error)
	RevokeCredential(ctx context.Context, caller id.Principal, credID id.CredentialID) error
	AuthorizeInstitution(ctx context.Context, caller, institution id.Principal, name string) error
	DeauthorizeInstitution(ctx context.Context, caller, institution id.Principal) error
	TransferAdministrator(ctx context.Context, caller, newAdmin id.Principal) error
	GetInstitutionInfo(ctx context.Context, institution id.Principal) (access.Institution, error)
}

// Handler is the thin HTTP layer. It delegates to the registry facade
// without embedding business logic so transport concerns remain isolated.
type Handler struct {
	registry     RegistryService
	logger       *slog.Logger
	metrics      *metrics.Metrics
	validator    middleware.PrincipalValidator
	healthChecks []healthCheck
}

type healthCheck struct {
	name  string
	check func(context.Context) error
}

// RegisterHealthCheck adds a dependency probe to the health endpoint.
func (h *Handler) RegisterHealthCheck(name string, check func(context.Context) error) {
	h.healthChecks = append(h.healthChecks, healthCheck{name: name, check: check})
}

func NewHandler(reg RegistryService, logger *slog.Logger, m *metrics.Metrics, validator middleware.PrincipalValidator) *Handler {
	return &Handler{
		registry:  reg,
		logger:    logger,
		metrics:   m,
		validator: validator,
	}
}

// NewRouter wires all endpoints. Verification and institution info are
// public; everything mutating requires a bearer token.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/credentials/{id}", h.handleVerifyCredential)
	r.Get("/institutions/{principal}", h.handleInstitutionInfo)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))
		pr.Post("/credentials", h.handleIssueCredential)
		pr.Post("/credentials/{id}/revoke", h.handleRevokeCredential)
		pr.Put("/institutions/{principal}", h.handleAuthorizeInstitution)
		pr.Delete("/institutions/{principal}", h.handleDeauthorizeInstitution)
		pr.Post("/admin/transfer", h.handleTransferAdministrator)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	deps := make(map[string]string, len(h.healthChecks))
	for _, hc := range h.healthChecks {
		if err := hc.check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[hc.name] = "unavailable"
			h.logger.ErrorContext(ctx, "health check failed",
				"dependency", hc.name,
				"error", err,
			)
			continue
		}
		deps[hc.name] = "ok"
	}

	body := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	writeJSON(w, status, body)
}
