// Package registry is the facade over the credential store and the identity
// and access service. It enforces access control and input invariants before
// touching state, derives identifiers, and emits notifications on success.
//
// Each credential identifier moves through Absent → Active → Revoked.
// Revoked is terminal: no operation transitions a credential back to Active,
// and nothing leaves Absent except issuance.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"acadreg/internal/access"
	"acadreg/internal/credential"
	"acadreg/internal/notify"
	"acadreg/internal/platform/clock"
	"acadreg/internal/platform/metrics"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
	"acadreg/pkg/platform/sentinel"
)

// minGraduationYear is an exclusive lower bound: 1900 itself is rejected.
const minGraduationYear = 1900

// IssueRequest carries the caller-supplied fields of a new credential.
// The institution name is not an input: it is captured from the issuer's
// current registration at issuance time.
type IssueRequest struct {
	StudentName    string
	Degree         string
	Field          string
	GraduationYear int
	DocumentRef    string
}

// Service is the registry facade. Mutating operations serialize on a single
// mutex so that the check-then-act sequences (collision check + insert,
// validity check + flip) apply atomically, matching the all-or-nothing
// semantics callers are promised.
type Service struct {
	mu       sync.Mutex
	access   *access.Service
	store    credential.Store
	clock    clock.Clock
	notifier notify.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithNotifier(n notify.Publisher) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(accessSvc *access.Service, store credential.Store, opts ...Option) (*Service, error) {
	if accessSvc == nil {
		return nil, errors.New("access service is required")
	}
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	s := &Service{
		access:   accessSvc,
		store:    store,
		clock:    clock.System{},
		notifier: notify.Nop{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("acadreg/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueCredential creates a new credential record and returns its
// identifier. Preconditions are checked in order, each with a distinct
// failure: caller authorization (PermissionDenied), non-empty text fields
// (InvalidArgument), then the graduation-year bound (InvalidArgument).
//
// The identifier is derived from the credential's defining fields plus the
// caller and the current logical second. A second issuance of byte-identical
// content by the same caller within the same second therefore collides and
// fails AlreadyExists. That is the intended uniqueness check, not a bug.
func (s *Service) IssueCredential(ctx context.Context, caller id.Principal, req IssueRequest) (id.CredentialID, error) {
	ctx, span := s.tracer.Start(ctx, "registry.IssueCredential")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	authorized, err := s.access.IsAuthorizedIssuer(ctx, caller)
	if err != nil {
		return "", err
	}
	if !authorized {
		return "", dErrors.New(dErrors.CodePermissionDenied, "caller is not an authorized issuer")
	}
	if req.StudentName == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "student name must not be empty")
	}
	if req.Degree == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "degree must not be empty")
	}
	if req.Field == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "field of study must not be empty")
	}
	if req.DocumentRef == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "document reference must not be empty")
	}

	now := s.clock.Now()
	currentYear := clock.ApproxYear(now)
	if req.GraduationYear <= minGraduationYear || req.GraduationYear > currentYear {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "graduation year is out of range")
	}

	credID := credential.Identify(req.StudentName, req.Degree, req.Field, req.GraduationYear, caller, now)
	span.SetAttributes(attribute.String("credential.id", credID.String()))

	inst, err := s.access.InstitutionInfo(ctx, caller)
	if err != nil {
		return "", err
	}

	record := credential.Credential{
		ID:              credID,
		StudentName:     req.StudentName,
		InstitutionName: inst.Name,
		Degree:          req.Degree,
		Field:           req.Field,
		GraduationYear:  req.GraduationYear,
		DocumentRef:     req.DocumentRef,
		Valid:           true,
		IssuedAt:        now,
		Issuer:          caller,
	}
	if err := s.store.Insert(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return "", dErrors.New(dErrors.CodeAlreadyExists, "credential already exists")
		}
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to store credential", err)
	}

	if err := s.notifier.Emit(ctx, notify.CredentialIssued(credID, req.StudentName, inst.Name, req.Degree, caller)); err != nil {
		s.logger.WarnContext(ctx, "failed to emit credential issued event",
			"credential_id", credID,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}
	s.logger.InfoContext(ctx, "credential issued",
		"credential_id", credID,
		"issuer", caller,
		"institution", inst.Name,
	)
	return credID, nil
}

// VerifyCredential returns the full credential record for anyone holding its
// identifier. There is no access control: verifiability by third parties is
// the point of the registry.
func (s *Service) VerifyCredential(ctx context.Context, credID id.CredentialID) (credential.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "registry.VerifyCredential")
	defer span.End()

	cred, err := s.store.Get(ctx, credID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return credential.Credential{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return credential.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "failed to read credential", err)
	}
	return cred, nil
}

// RevokeCredential flips a credential's validity to false. Permitted to the
// issuing institution and the administrator. Irreversible: a second attempt
// fails AlreadyRevoked.
func (s *Service) RevokeCredential(ctx context.Context, caller id.Principal, credID id.CredentialID) error {
	ctx, span := s.tracer.Start(ctx, "registry.RevokeCredential")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.store.Get(ctx, credID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to read credential", err)
	}

	if caller != cred.Issuer {
		isAdmin, err := s.access.IsAdministrator(ctx, caller)
		if err != nil {
			return err
		}
		if !isAdmin {
			return dErrors.New(dErrors.CodePermissionDenied, "caller is neither the issuer nor the administrator")
		}
	}
	if !cred.Valid {
		return dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked")
	}
	if err := s.store.SetValidity(ctx, credID, false); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to revoke credential", err)
	}

	if err := s.notifier.Emit(ctx, notify.CredentialRevoked(credID, caller)); err != nil {
		s.logger.WarnContext(ctx, "failed to emit credential revoked event",
			"credential_id", credID,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	s.logger.InfoContext(ctx, "credential revoked",
		"credential_id", credID,
		"revoker", caller,
	)
	return nil
}

// AuthorizeInstitution, DeauthorizeInstitution, TransferAdministrator, and
// GetInstitutionInfo complete the facade's operation surface by delegating
// to the access service, so transports depend on a single type.

func (s *Service) AuthorizeInstitution(ctx context.Context, caller, institution id.Principal, name string) error {
	if err := s.access.Authorize(ctx, caller, institution, name); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.InstitutionsAuthorized.Inc()
	}
	return nil
}

func (s *Service) DeauthorizeInstitution(ctx context.Context, caller, institution id.Principal) error {
	return s.access.Deauthorize(ctx, caller, institution)
}

func (s *Service) TransferAdministrator(ctx context.Context, caller, newAdmin id.Principal) error {
	return s.access.TransferAdministrator(ctx, caller, newAdmin)
}

func (s *Service) GetInstitutionInfo(ctx context.Context, institution id.Principal) (access.Institution, error) {
	return s.access.InstitutionInfo(ctx, institution)
}
