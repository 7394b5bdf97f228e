package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"acadreg/internal/platform/middleware"
	"acadreg/internal/registry"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
)

type issueCredentialRequest struct {
	StudentName    string `json:"student_name"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationYear int    `json:"graduation_year"`
	DocumentRef    string `json:"document_ref"`
}

type issueCredentialResponse struct {
	CredentialID string `json:"credential_id"`
}

type credentialResponse struct {
	CredentialID    string `json:"credential_id"`
	Valid           bool   `json:"valid"`
	StudentName     string `json:"student_name"`
	InstitutionName string `json:"institution_name"`
	Degree          string `json:"degree"`
	Field           string `json:"field"`
	GraduationYear  int    `json:"graduation_year"`
	DocumentRef     string `json:"document_ref"`
	IssuedAt        int64  `json:"issued_at"`
	Issuer          string `json:"issuer"`
}

// handleIssueCredential creates a credential on behalf of the authenticated
// issuer.
func (h *Handler) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)
	if caller.IsNil() {
		h.logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req issueCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidArgument, "invalid request body"))
		return
	}

	credID, err := h.registry.IssueCredential(ctx, caller, registry.IssueRequest{
		StudentName:    req.StudentName,
		Degree:         req.Degree,
		Field:          req.Field,
		GraduationYear: req.GraduationYear,
		DocumentRef:    req.DocumentRef,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueCredentialResponse{CredentialID: credID.String()})
}

// handleVerifyCredential is public: anyone holding an identifier may read
// the record.
func (h *Handler) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	credID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	cred, err := h.registry.VerifyCredential(r.Context(), credID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialResponse{
		CredentialID:    cred.ID.String(),
		Valid:           cred.Valid,
		StudentName:     cred.StudentName,
		InstitutionName: cred.InstitutionName,
		Degree:          cred.Degree,
		Field:           cred.Field,
		GraduationYear:  cred.GraduationYear,
		DocumentRef:     cred.DocumentRef,
		IssuedAt:        cred.IssuedAt,
		Issuer:          cred.Issuer.String(),
	})
}

// handleRevokeCredential flips a credential invalid for the issuer or the
// administrator.
func (h *Handler) handleRevokeCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetPrincipal(ctx)
	if caller.IsNil() {
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	credID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.registry.RevokeCredential(ctx, caller, credID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
