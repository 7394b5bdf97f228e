package access

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"acadreg/internal/notify"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
	"acadreg/pkg/platform/sentinel"
)

// Service owns the administrator identity and the authorized-issuer set.
// Permission checks live here as explicit preconditions at the top of each
// mutating operation so they stay inspectable and independently testable.
//
// Mutating operations serialize on a single mutex: authorization is a
// check-then-act sequence over shared state and callers rely on it applying
// atomically.
type Service struct {
	mu       sync.Mutex
	store    Store
	notifier notify.Publisher
	logger   *slog.Logger
}

type Option func(*Service)

func WithNotifier(n notify.Publisher) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("access store is required")
	}
	s := &Service{
		store:    store,
		notifier: notify.Nop{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bootstrap installs the initial administrator. It is a no-op when an
// administrator is already set, so restarts do not clobber a transferred
// role.
func (s *Service) Bootstrap(ctx context.Context, admin id.Principal) error {
	if admin.IsNil() {
		return dErrors.New(dErrors.CodeInvalidArgument, "administrator must not be the null identity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.Administrator(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to read administrator", err)
	}
	if err := s.store.SetAdministrator(ctx, admin); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to set administrator", err)
	}
	s.logger.InfoContext(ctx, "administrator bootstrapped", "administrator", admin)
	return nil
}

// IsAdministrator reports whether p is the current administrator.
func (s *Service) IsAdministrator(ctx context.Context, p id.Principal) (bool, error) {
	admin, err := s.store.Administrator(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to read administrator", err)
	}
	return !p.IsNil() && p == admin, nil
}

// IsAuthorizedIssuer reports whether p may issue credentials.
func (s *Service) IsAuthorizedIssuer(ctx context.Context, p id.Principal) (bool, error) {
	inst, err := s.store.FindInstitution(ctx, p)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to read institution", err)
	}
	return inst.Authorized, nil
}

// Authorize adds an institution to the issuer set. Administrator only.
func (s *Service) Authorize(ctx context.Context, caller, institution id.Principal, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdministrator(ctx, caller); err != nil {
		return err
	}
	if institution.IsNil() {
		return dErrors.New(dErrors.CodeInvalidArgument, "institution must not be the null identity")
	}
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "institution name must not be empty")
	}
	existing, err := s.store.FindInstitution(ctx, institution)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to read institution", err)
	}
	if err == nil && existing.Authorized {
		return dErrors.New(dErrors.CodeInvalidArgument, "institution is already authorized")
	}

	inst := Institution{Principal: institution, Name: name, Authorized: true}
	if err := s.store.SaveInstitution(ctx, inst); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to save institution", err)
	}

	if err := s.notifier.Emit(ctx, notify.InstitutionAuthorized(institution, name)); err != nil {
		s.logger.WarnContext(ctx, "failed to emit institution authorized event",
			"institution", institution,
			"error", err,
		)
	}
	s.logger.InfoContext(ctx, "institution authorized",
		"institution", institution,
		"name", name,
	)
	return nil
}

// Deauthorize removes an institution from the issuer set and erases its
// display name. Administrator only. Previously issued credentials keep the
// name they captured at issuance.
func (s *Service) Deauthorize(ctx context.Context, caller, institution id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdministrator(ctx, caller); err != nil {
		return err
	}
	inst, err := s.store.FindInstitution(ctx, institution)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeInvalidArgument, "institution is not authorized")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to read institution", err)
	}
	if !inst.Authorized {
		return dErrors.New(dErrors.CodeInvalidArgument, "institution is not authorized")
	}
	if err := s.store.RemoveInstitution(ctx, institution); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to remove institution", err)
	}
	s.logger.InfoContext(ctx, "institution deauthorized", "institution", institution)
	return nil
}

// TransferAdministrator hands the administrator role to newAdmin.
// Administrator only; no history of past administrators is kept.
func (s *Service) TransferAdministrator(ctx context.Context, caller, newAdmin id.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdministrator(ctx, caller); err != nil {
		return err
	}
	if newAdmin.IsNil() {
		return dErrors.New(dErrors.CodeInvalidArgument, "new administrator must not be the null identity")
	}
	if err := s.store.SetAdministrator(ctx, newAdmin); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to set administrator", err)
	}
	s.logger.InfoContext(ctx, "administrator transferred",
		"from", caller,
		"to", newAdmin,
	)
	return nil
}

// InstitutionInfo returns the authorization flag and display name for any
// principal. Unknown principals yield the zero Institution (false, "") —
// this read has no failure modes for absent records.
func (s *Service) InstitutionInfo(ctx context.Context, principal id.Principal) (Institution, error) {
	inst, err := s.store.FindInstitution(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Institution{Principal: principal}, nil
		}
		return Institution{}, dErrors.Wrap(dErrors.CodeInternal, "failed to read institution", err)
	}
	return inst, nil
}

func (s *Service) requireAdministrator(ctx context.Context, caller id.Principal) error {
	ok, err := s.IsAdministrator(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodePermissionDenied, "caller is not the administrator")
	}
	return nil
}
