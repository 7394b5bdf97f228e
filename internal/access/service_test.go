package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"acadreg/internal/notify"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
)

const (
	admin   = id.Principal("registry-admin")
	alphaU  = id.Principal("alpha-university")
	betaC   = id.Principal("beta-college")
	someone = id.Principal("random-caller")
)

type AccessServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	sink    *notify.MemorySink
	service *Service
}

func TestAccessServiceSuite(t *testing.T) {
	suite.Run(t, new(AccessServiceSuite))
}

func (s *AccessServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.sink = notify.NewMemorySink()

	var err error
	s.service, err = New(s.store, WithNotifier(s.sink))
	s.Require().NoError(err)
	s.Require().NoError(s.service.Bootstrap(context.Background(), admin))
}

func (s *AccessServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "access store is required")
	})
}

func (s *AccessServiceSuite) TestBootstrap() {
	ctx := context.Background()

	s.Run("null identity rejected", func() {
		err := s.service.Bootstrap(ctx, id.NilPrincipal)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("does not clobber an existing administrator", func() {
		s.NoError(s.service.Bootstrap(ctx, someone))
		ok, err := s.service.IsAdministrator(ctx, admin)
		s.NoError(err)
		s.True(ok)
	})
}

func (s *AccessServiceSuite) TestIsAdministrator() {
	ctx := context.Background()

	ok, err := s.service.IsAdministrator(ctx, admin)
	s.NoError(err)
	s.True(ok)

	ok, err = s.service.IsAdministrator(ctx, someone)
	s.NoError(err)
	s.False(ok)

	ok, err = s.service.IsAdministrator(ctx, id.NilPrincipal)
	s.NoError(err)
	s.False(ok)
}

func (s *AccessServiceSuite) TestAuthorize() {
	ctx := context.Background()

	s.Run("non-administrator denied", func() {
		err := s.service.Authorize(ctx, someone, alphaU, "Alpha University")
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("null institution rejected", func() {
		err := s.service.Authorize(ctx, admin, id.NilPrincipal, "Alpha University")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("empty name rejected", func() {
		err := s.service.Authorize(ctx, admin, alphaU, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("success records institution and emits event", func() {
		s.NoError(s.service.Authorize(ctx, admin, alphaU, "Alpha University"))

		ok, err := s.service.IsAuthorizedIssuer(ctx, alphaU)
		s.NoError(err)
		s.True(ok)

		inst, err := s.service.InstitutionInfo(ctx, alphaU)
		s.NoError(err)
		s.Equal("Alpha University", inst.Name)
		s.True(inst.Authorized)

		events := s.sink.Events()
		s.Require().Len(events, 1)
		s.Equal(notify.ActionInstitutionAuthorized, events[0].Action)
		s.Equal(alphaU, events[0].Institution)
		s.Equal("Alpha University", events[0].InstitutionName)
	})

	s.Run("double authorization rejected", func() {
		err := s.service.Authorize(ctx, admin, alphaU, "Alpha University Again")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})
}

func (s *AccessServiceSuite) TestDeauthorize() {
	ctx := context.Background()
	s.Require().NoError(s.service.Authorize(ctx, admin, alphaU, "Alpha University"))

	s.Run("non-administrator denied", func() {
		err := s.service.Deauthorize(ctx, someone, alphaU)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("unknown institution rejected", func() {
		err := s.service.Deauthorize(ctx, admin, betaC)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("success clears flag and erases name", func() {
		s.NoError(s.service.Deauthorize(ctx, admin, alphaU))

		ok, err := s.service.IsAuthorizedIssuer(ctx, alphaU)
		s.NoError(err)
		s.False(ok)

		inst, err := s.service.InstitutionInfo(ctx, alphaU)
		s.NoError(err)
		s.Empty(inst.Name)
		s.False(inst.Authorized)
	})

	s.Run("deauthorizing twice rejected", func() {
		err := s.service.Deauthorize(ctx, admin, alphaU)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("re-authorization requires and takes a fresh name", func() {
		s.NoError(s.service.Authorize(ctx, admin, alphaU, "Alpha U (renamed)"))
		inst, err := s.service.InstitutionInfo(ctx, alphaU)
		s.NoError(err)
		s.Equal("Alpha U (renamed)", inst.Name)
		s.True(inst.Authorized)
	})
}

func (s *AccessServiceSuite) TestTransferAdministrator() {
	ctx := context.Background()

	s.Run("non-administrator denied", func() {
		err := s.service.TransferAdministrator(ctx, someone, betaC)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("null identity rejected", func() {
		err := s.service.TransferAdministrator(ctx, admin, id.NilPrincipal)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("success replaces the administrator atomically", func() {
		s.NoError(s.service.TransferAdministrator(ctx, admin, someone))

		ok, err := s.service.IsAdministrator(ctx, someone)
		s.NoError(err)
		s.True(ok)

		// The old administrator keeps no residual rights.
		ok, err = s.service.IsAdministrator(ctx, admin)
		s.NoError(err)
		s.False(ok)
		err = s.service.Authorize(ctx, admin, alphaU, "Alpha University")
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}

func (s *AccessServiceSuite) TestInstitutionInfo_UnknownPrincipal() {
	inst, err := s.service.InstitutionInfo(context.Background(), betaC)
	s.NoError(err)
	s.Equal(betaC, inst.Principal)
	s.Empty(inst.Name)
	s.False(inst.Authorized)
}
