package registry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"acadreg/internal/access"
	"acadreg/internal/credential"
	"acadreg/internal/notify"
	"acadreg/internal/platform/clock"
	"acadreg/internal/platform/metrics"
	id "acadreg/pkg/domain"
	dErrors "acadreg/pkg/domain-errors"
)

const (
	admin    = id.Principal("registry-admin")
	alphaU   = id.Principal("alpha-university")
	betaC    = id.Principal("beta-college")
	stranger = id.Principal("random-caller")

	// clockUnix derives flat year 2023 (1_700_000_000 / 31_536_000 = 53).
	clockUnix = int64(1_700_000_000)
)

func validRequest() IssueRequest {
	return IssueRequest{
		StudentName:    "Jane Doe",
		Degree:         "BSc",
		Field:          "CS",
		GraduationYear: 2023,
		DocumentRef:    "doc123",
	}
}

type RegistryServiceSuite struct {
	suite.Suite
	store     *credential.InMemoryStore
	accessSvc *access.Service
	sink      *notify.MemorySink
	clock     *clock.Fixed
	service   *Service
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	ctx := context.Background()
	s.store = credential.NewInMemoryStore()
	s.sink = notify.NewMemorySink()
	s.clock = &clock.Fixed{Unix: clockUnix}

	var err error
	s.accessSvc, err = access.New(access.NewInMemoryStore())
	s.Require().NoError(err)
	s.Require().NoError(s.accessSvc.Bootstrap(ctx, admin))
	s.Require().NoError(s.accessSvc.Authorize(ctx, admin, alphaU, "Alpha University"))

	s.service, err = New(s.accessSvc, s.store,
		WithClock(s.clock),
		WithNotifier(s.sink),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)
}

func (s *RegistryServiceSuite) TestNew() {
	s.Run("nil access service returns error", func() {
		_, err := New(nil, s.store)
		s.Error(err)
	})
	s.Run("nil store returns error", func() {
		_, err := New(s.accessSvc, nil)
		s.Error(err)
	})
}

// =============================================================================
// Issuance
// =============================================================================

func (s *RegistryServiceSuite) TestIssueCredential_ReadAfterWrite() {
	ctx := context.Background()

	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Valid)
	s.Equal("Jane Doe", cred.StudentName)
	s.Equal("Alpha University", cred.InstitutionName)
	s.Equal("BSc", cred.Degree)
	s.Equal("CS", cred.Field)
	s.Equal(2023, cred.GraduationYear)
	s.Equal("doc123", cred.DocumentRef)
	s.Equal(alphaU, cred.Issuer)
	s.Equal(clockUnix, cred.IssuedAt)
}

func (s *RegistryServiceSuite) TestIssueCredential_IdentifierIsDeterministic() {
	ctx := context.Background()

	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	req := validRequest()
	want := credential.Identify(req.StudentName, req.Degree, req.Field, req.GraduationYear, alphaU, clockUnix)
	s.Equal(want, credID)
}

func (s *RegistryServiceSuite) TestIssueCredential_UnauthorizedCallerLeavesStoreUnchanged() {
	ctx := context.Background()

	_, err := s.service.IssueCredential(ctx, stranger, validRequest())
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

	// The identifier the call would have derived must remain absent.
	req := validRequest()
	wouldBe := credential.Identify(req.StudentName, req.Degree, req.Field, req.GraduationYear, stranger, clockUnix)
	_, err = s.service.VerifyCredential(ctx, wouldBe)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.sink.Events())
}

func (s *RegistryServiceSuite) TestIssueCredential_DeauthorizedIssuerDenied() {
	ctx := context.Background()
	s.Require().NoError(s.accessSvc.Deauthorize(ctx, admin, alphaU))

	_, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
}

func (s *RegistryServiceSuite) TestIssueCredential_EmptyFieldsRejected() {
	ctx := context.Background()

	mutations := map[string]func(*IssueRequest){
		"student name": func(r *IssueRequest) { r.StudentName = "" },
		"degree":       func(r *IssueRequest) { r.Degree = "" },
		"field":        func(r *IssueRequest) { r.Field = "" },
		"document ref": func(r *IssueRequest) { r.DocumentRef = "" },
	}
	for name, mutate := range mutations {
		s.Run(name, func() {
			req := validRequest()
			mutate(&req)
			_, err := s.service.IssueCredential(ctx, alphaU, req)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		})
	}
}

func (s *RegistryServiceSuite) TestIssueCredential_GraduationYearBounds() {
	ctx := context.Background()

	s.Run("1900 fails", func() {
		req := validRequest()
		req.GraduationYear = 1900
		_, err := s.service.IssueCredential(ctx, alphaU, req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("1901 succeeds", func() {
		req := validRequest()
		req.GraduationYear = 1901
		_, err := s.service.IssueCredential(ctx, alphaU, req)
		s.NoError(err)
	})

	s.Run("current derived year succeeds", func() {
		req := validRequest()
		req.GraduationYear = 2023
		req.StudentName = "Current Year Student"
		_, err := s.service.IssueCredential(ctx, alphaU, req)
		s.NoError(err)
	})

	s.Run("beyond derived current year fails", func() {
		req := validRequest()
		req.GraduationYear = 2024
		_, err := s.service.IssueCredential(ctx, alphaU, req)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("bound follows the approximate clock, not the calendar", func() {
		// Advance the clock one flat year; 2024 becomes issuable.
		s.clock.Set(clockUnix + 31_536_000)
		req := validRequest()
		req.GraduationYear = 2024
		_, err := s.service.IssueCredential(ctx, alphaU, req)
		s.NoError(err)
		s.clock.Set(clockUnix)
	})
}

func (s *RegistryServiceSuite) TestIssueCredential_IdenticalContentSameSecondCollides() {
	ctx := context.Background()

	_, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	// Byte-identical fields from the same issuer at the same logical second:
	// the narrow, expected collision case.
	_, err = s.service.IssueCredential(ctx, alphaU, validRequest())
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExists))

	s.Run("next second issues cleanly", func() {
		s.clock.Set(clockUnix + 1)
		credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
		s.NoError(err)
		s.NotEmpty(credID)
		s.clock.Set(clockUnix)
	})
}

func (s *RegistryServiceSuite) TestIssueCredential_EmitsEvent() {
	ctx := context.Background()

	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal(notify.ActionCredentialIssued, events[0].Action)
	s.Equal(credID, events[0].CredentialID)
	s.Equal("Jane Doe", events[0].StudentName)
	s.Equal("Alpha University", events[0].InstitutionName)
	s.Equal("BSc", events[0].Degree)
	s.Equal(alphaU, events[0].Issuer)
}

// =============================================================================
// Verification
// =============================================================================

func (s *RegistryServiceSuite) TestVerifyCredential_UnknownID() {
	unknown := credential.Identify("Nobody", "BA", "None", 2000, stranger, 1)
	_, err := s.service.VerifyCredential(context.Background(), unknown)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Revocation
// =============================================================================

func (s *RegistryServiceSuite) TestRevokeCredential_ByIssuer() {
	ctx := context.Background()
	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.service.RevokeCredential(ctx, alphaU, credID))

	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.False(cred.Valid)
	// All other fields unchanged.
	s.Equal("Jane Doe", cred.StudentName)
	s.Equal("Alpha University", cred.InstitutionName)

	events := s.sink.Events()
	s.Require().Len(events, 2)
	s.Equal(notify.ActionCredentialRevoked, events[1].Action)
	s.Equal(credID, events[1].CredentialID)
	s.Equal(alphaU, events[1].Revoker)
}

func (s *RegistryServiceSuite) TestRevokeCredential_ByAdministrator() {
	ctx := context.Background()
	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	s.NoError(s.service.RevokeCredential(ctx, admin, credID))
}

func (s *RegistryServiceSuite) TestRevokeCredential_StrangerDenied() {
	ctx := context.Background()
	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	err = s.service.RevokeCredential(ctx, stranger, credID)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Valid)
}

func (s *RegistryServiceSuite) TestRevokeCredential_OtherIssuerDenied() {
	ctx := context.Background()
	s.Require().NoError(s.accessSvc.Authorize(ctx, admin, betaC, "Beta College"))

	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	err = s.service.RevokeCredential(ctx, betaC, credID)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
}

func (s *RegistryServiceSuite) TestRevokeCredential_TwiceFailsAlreadyRevoked() {
	ctx := context.Background()
	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	s.Require().NoError(s.service.RevokeCredential(ctx, alphaU, credID))

	err = s.service.RevokeCredential(ctx, alphaU, credID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

	// Still revoked; there is no third state.
	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.False(cred.Valid)
}

func (s *RegistryServiceSuite) TestRevokeCredential_UnknownID() {
	unknown := credential.Identify("Nobody", "BA", "None", 2000, stranger, 1)
	err := s.service.RevokeCredential(context.Background(), alphaU, unknown)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Snapshot-at-issuance and end-to-end scenario
// =============================================================================

func (s *RegistryServiceSuite) TestInstitutionNameSnapshotAtIssuance() {
	ctx := context.Background()

	credID, err := s.service.IssueCredential(ctx, alphaU, validRequest())
	s.Require().NoError(err)

	// Deauthorize and re-authorize under a new name; the issued record must
	// keep the name captured at issuance.
	s.Require().NoError(s.accessSvc.Deauthorize(ctx, admin, alphaU))
	s.Require().NoError(s.accessSvc.Authorize(ctx, admin, alphaU, "Alpha Institute of Technology"))

	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.Equal("Alpha University", cred.InstitutionName)
}

func (s *RegistryServiceSuite) TestIssueVerifyRevokeScenario() {
	ctx := context.Background()
	s.Require().NoError(s.service.AuthorizeInstitution(ctx, admin, betaC, "Beta College"))

	credID, err := s.service.IssueCredential(ctx, betaC, IssueRequest{
		StudentName:    "Jane Doe",
		Degree:         "BSc",
		Field:          "CS",
		GraduationYear: 2023,
		DocumentRef:    "doc123",
	})
	s.Require().NoError(err)
	s.Equal(credential.Identify("Jane Doe", "BSc", "CS", 2023, betaC, clockUnix), credID)

	cred, err := s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Valid)
	s.Equal("Jane Doe", cred.StudentName)
	s.Equal("Beta College", cred.InstitutionName)
	s.Equal("BSc", cred.Degree)
	s.Equal("CS", cred.Field)
	s.Equal(2023, cred.GraduationYear)
	s.Equal("doc123", cred.DocumentRef)

	s.Require().NoError(s.service.RevokeCredential(ctx, betaC, credID))

	cred, err = s.service.VerifyCredential(ctx, credID)
	s.Require().NoError(err)
	s.False(cred.Valid)
	s.Equal("Jane Doe", cred.StudentName)
	s.Equal("Beta College", cred.InstitutionName)
	s.Equal("BSc", cred.Degree)
	s.Equal("CS", cred.Field)
	s.Equal(2023, cred.GraduationYear)
	s.Equal("doc123", cred.DocumentRef)
}

// =============================================================================
// Facade delegation
// =============================================================================

func (s *RegistryServiceSuite) TestFacadeDelegation() {
	ctx := context.Background()

	s.Run("authorize and info", func() {
		s.NoError(s.service.AuthorizeInstitution(ctx, admin, betaC, "Beta College"))
		inst, err := s.service.GetInstitutionInfo(ctx, betaC)
		s.NoError(err)
		s.True(inst.Authorized)
		s.Equal("Beta College", inst.Name)
	})

	s.Run("deauthorize", func() {
		s.NoError(s.service.DeauthorizeInstitution(ctx, admin, betaC))
		inst, err := s.service.GetInstitutionInfo(ctx, betaC)
		s.NoError(err)
		s.False(inst.Authorized)
		s.Empty(inst.Name)
	})

	s.Run("transfer administrator", func() {
		s.NoError(s.service.TransferAdministrator(ctx, admin, stranger))
		err := s.service.AuthorizeInstitution(ctx, admin, betaC, "Beta College")
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
		s.NoError(s.service.AuthorizeInstitution(ctx, stranger, betaC, "Beta College"))
	})
}
