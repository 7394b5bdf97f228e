package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"acadreg/internal/platform/middleware"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
)

type authorizeInstitutionRequest struct {
	Name string `json:"name"`
}

type institutionResponse struct {
	Principal  string `json:"principal"`
	Name       string `json:"name"`
	Authorized bool   `json:"authorized"`
}

type transferAdministratorRequest struct {
	NewAdministrator string `json:"new_administrator"`
}

// handleAuthorizeInstitution registers a principal as an authorized issuer.
// Administrator only; the service enforces it.
func (h *Handler) handleAuthorizeInstitution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	institution, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req authorizeInstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidArgument, "invalid request body"))
		return
	}

	if err := h.registry.AuthorizeInstitution(ctx, caller, institution, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, institutionResponse{
		Principal:  institution.String(),
		Name:       req.Name,
		Authorized: true,
	})
}

func (h *Handler) handleDeauthorizeInstitution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	institution, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.registry.DeauthorizeInstitution(ctx, caller, institution); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deauthorized"})
}

// handleInstitutionInfo is public and never fails for unknown principals:
// those return (false, "").
func (h *Handler) handleInstitutionInfo(w http.ResponseWriter, r *http.Request) {
	institution, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, err)
		return
	}

	inst, err := h.registry.GetInstitutionInfo(r.Context(), institution)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, institutionResponse{
		Principal:  institution.String(),
		Name:       inst.Name,
		Authorized: inst.Authorized,
	})
}

func (h *Handler) handleTransferAdministrator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)

	var req transferAdministratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidArgument, "invalid request body"))
		return
	}
	newAdmin, err := id.ParsePrincipal(req.NewAdministrator)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.registry.TransferAdministrator(ctx, caller, newAdmin); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}
