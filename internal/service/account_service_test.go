package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/events"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

func errCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestAccountServiceRequiresManager(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	team := f.seedStaff(t, "team@studio.test", "team-password", domain.RoleTeam, nil)
	client := f.seedClient(t, "buyer@brand.test", "portal-pass", true, nil)

	_, err := f.accounts.ListStaff(ctx, staffSession(team), StaffListFilters{})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = f.accounts.ListClients(ctx, clientSession(client), ClientListFilters{})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = f.accounts.ListClients(ctx, nil, ClientListFilters{})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestCreateStaff(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin := f.seedStaff(t, "admin@studio.test", "admin-password", domain.RoleAdmin, nil)

	staff, err := f.accounts.CreateStaff(ctx, staffSession(admin), CreateStaffInput{
		Email:    "editor@studio.test",
		Name:     "Editor",
		Password: "editor-password",
		Role:     domain.RoleTeam,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, staff.ID)
	assert.NotEqual(t, "editor-password", staff.PasswordHash)

	_, err = f.identities.AuthenticateStaff(ctx, "editor@studio.test", "editor-password")
	assert.NoError(t, err)

	_, err = f.accounts.CreateStaff(ctx, staffSession(admin), CreateStaffInput{
		Email: "editor@studio.test", Name: "Dup", Password: "editor-password", Role: domain.RoleTeam,
	})
	assert.Equal(t, "CONFLICT", errCode(t, err))

	_, err = f.accounts.CreateStaff(ctx, staffSession(admin), CreateStaffInput{
		Email: "x@studio.test", Name: "X", Password: "x-password", Role: domain.RoleClient,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.accounts.CreateStaff(ctx, staffSession(admin), CreateStaffInput{
		Email: "not-an-email", Name: "X", Password: "x-password", Role: domain.RoleTeam,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = f.accounts.CreateStaff(ctx, staffSession(admin), CreateStaffInput{
		Email: "agency@studio.test", Name: "X", Password: "x-password", Role: domain.RoleAgencyTeam,
	})
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), "agency roles need an agency")
}

func TestAgencyAdminIsConfinedToOwnAgency(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	agencyAdmin := f.seedStaff(t, "lead@agency.test", "lead-password", domain.RoleAgencyAdmin, strPtr("agency-1"))
	foreign := f.seedStaff(t, "other@agency.test", "other-password", domain.RoleAgencyTeam, strPtr("agency-2"))
	actor := staffSession(agencyAdmin)

	_, err := f.accounts.CreateStaff(ctx, actor, CreateStaffInput{
		Email: "boss@agency.test", Name: "Boss", Password: "boss-password", Role: domain.RoleAdmin,
	})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	staff, err := f.accounts.CreateStaff(ctx, actor, CreateStaffInput{
		Email: "crew@agency.test", Name: "Crew", Password: "crew-password", Role: domain.RoleAgencyTeam, AgencyID: strPtr("agency-2"),
	})
	require.NoError(t, err)
	require.NotNil(t, staff.AgencyID)
	assert.Equal(t, "agency-1", *staff.AgencyID)

	_, err = f.accounts.ChangeStaffRole(ctx, actor, foreign.ID, domain.RoleAgencyAdmin)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	listed, err := f.accounts.ListStaff(ctx, actor, StaffListFilters{})
	require.NoError(t, err)
	for _, s := range listed {
		require.NotNil(t, s.AgencyID)
		assert.Equal(t, "agency-1", *s.AgencyID)
	}
}

func TestChangeStaffRole(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin := f.seedStaff(t, "admin@studio.test", "admin-password", domain.RoleAdmin, nil)
	editor := f.seedStaff(t, "editor@studio.test", "editor-password", domain.RoleTeam, nil)

	_, err := f.accounts.ChangeStaffRole(ctx, staffSession(admin), admin.ID, domain.RoleTeam)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	updated, err := f.accounts.ChangeStaffRole(ctx, staffSession(admin), editor.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	published := f.dispatcher.ofType(events.EventStaffRoleChanged)
	require.Len(t, published, 1)
	assert.Equal(t, events.StaffRoleChangedPayload{OldRole: domain.RoleTeam, NewRole: domain.RoleAdmin}, published[0].Payload)

	subject, err := f.auth.LoginStaff(ctx, "editor@studio.test", "editor-password")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, subject.Role, "next login picks up the new role")

	_, err = f.accounts.ChangeStaffRole(ctx, staffSession(admin), "missing", domain.RoleTeam)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestInviteAndTogglePortal(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	agencyAdmin := f.seedStaff(t, "lead@agency.test", "lead-password", domain.RoleAgencyAdmin, strPtr("agency-1"))
	actor := staffSession(agencyAdmin)

	client, token, err := f.accounts.InviteClient(ctx, actor, InviteClientInput{
		Email: "buyer@brand.test", Name: "Buyer", CompanyName: "Brand", PortalEnabled: true,
	})
	require.NoError(t, err)
	require.NotNil(t, client.AgencyID)
	assert.Equal(t, "agency-1", *client.AgencyID)
	assert.Equal(t, domain.TokenPurposeInvite, token.Purpose)
	require.Len(t, f.dispatcher.ofType(events.EventClientInvited), 1)

	_, _, err = f.accounts.InviteClient(ctx, actor, InviteClientInput{Email: "buyer@brand.test", Name: "Again"})
	assert.Equal(t, "CONFLICT", errCode(t, err))

	require.NoError(t, f.auth.ActivateClient(ctx, token.Token, "first-password"))

	updated, err := f.accounts.SetPortalEnabled(ctx, actor, client.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.PortalEnabled)
	require.Len(t, f.dispatcher.ofType(events.EventPortalAccessChanged), 1)

	_, err = f.identities.AuthenticateClient(ctx, "buyer@brand.test", "first-password")
	assert.ErrorIs(t, err, ErrPortalDisabled)

	_, err = f.accounts.SetPortalEnabled(ctx, actor, client.ID, false)
	require.NoError(t, err)
	assert.Len(t, f.dispatcher.ofType(events.EventPortalAccessChanged), 1, "no event when nothing changed")

	outsider := f.seedClient(t, "other@brand.test", "portal-pass", true, strPtr("agency-2"))
	_, err = f.accounts.SetPortalEnabled(ctx, actor, outsider.ID, false)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	listed, err := f.accounts.ListClients(ctx, actor, ClientListFilters{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, client.ID, listed[0].ID)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.accounts.EnsureBootstrapAdmin(ctx, " root@studio.test ", "bootstrap-password")
	require.NoError(t, err)
	assert.True(t, created)

	subject, err := f.auth.LoginStaff(ctx, "root@studio.test", "bootstrap-password")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, subject.Role)

	created, err = f.accounts.EnsureBootstrapAdmin(ctx, "root@studio.test", "other-password")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.accounts.EnsureBootstrapAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = f.accounts.EnsureBootstrapAdmin(ctx, "new@studio.test", "short")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestAgenciesBackAgencyScopedAccounts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	admin := staffSession(f.seedStaff(t, "admin@studio.test", "admin-password", domain.RoleAdmin, nil))

	_, err := f.accounts.CreateAgency(ctx, admin, "   ")
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	north, err := f.accounts.CreateAgency(ctx, admin, " North Studio ")
	require.NoError(t, err)
	assert.Equal(t, "North Studio", north.Name)
	_, err = f.accounts.CreateAgency(ctx, admin, "South Studio")
	require.NoError(t, err)

	lead, err := f.accounts.CreateStaff(ctx, admin, CreateStaffInput{
		Email: "lead@north.test", Name: "Lead", Password: "lead-password", Role: domain.RoleAgencyAdmin, AgencyID: &north.ID,
	})
	require.NoError(t, err)

	for _, unknown := range []string{uuid.NewString(), "north"} {
		_, err = f.accounts.CreateStaff(ctx, admin, CreateStaffInput{
			Email: "crew@north.test", Name: "Crew", Password: "crew-password", Role: domain.RoleAgencyTeam, AgencyID: strPtr(unknown),
		})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), unknown)

		_, _, err = f.accounts.InviteClient(ctx, admin, InviteClientInput{Email: "buyer@north.test", Name: "Buyer", AgencyID: strPtr(unknown)})
		assert.Equal(t, "VALIDATION_FAILED", errCode(t, err), unknown)
	}

	all, err := f.accounts.ListAgencies(ctx, admin, AgencyListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	leadSession := staffSession(lead)
	own, err := f.accounts.ListAgencies(ctx, leadSession, AgencyListFilters{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, north.ID, own[0].ID)

	_, err = f.accounts.CreateAgency(ctx, leadSession, "Rogue")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestMalformedIDsAreNotFoundWithoutLookup(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	staff := &uuidColumnStaff{StaffRepository: f.staff}
	accounts := NewAccountService(testAuthConfig(), AccountDependencies{
		StaffRepo:   staff,
		ClientRepo:  f.clients,
		AgencyRepo:  f.agencies,
		AuthService: f.auth,
	}, nil)
	admin := staffSession(f.seedStaff(t, "admin@studio.test", "admin-password", domain.RoleAdmin, nil))

	_, err := accounts.ChangeStaffRole(ctx, admin, "42; drop", domain.RoleTeam)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
	assert.Zero(t, staff.lookups)

	_, err = accounts.SetPortalEnabled(ctx, admin, "not-a-uuid", true)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	_, err = accounts.ChangeStaffRole(ctx, admin, uuid.NewString(), domain.RoleTeam)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
	assert.Equal(t, 1, staff.lookups)
}

func TestPublishFailuresAreLoggedNotReturned(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	accounts := NewAccountService(testAuthConfig(), AccountDependencies{
		StaffRepo:   f.staff,
		ClientRepo:  f.clients,
		AgencyRepo:  f.agencies,
		AuthService: f.auth,
		Dispatcher:  failingDispatcher{},
	}, zap.New(core))
	admin := staffSession(f.seedStaff(t, "admin@studio.test", "admin-password", domain.RoleAdmin, nil))
	editor := f.seedStaff(t, "editor@studio.test", "editor-password", domain.RoleTeam, nil)

	updated, err := accounts.ChangeStaffRole(ctx, admin, editor.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	entries := logs.FilterMessage("publish event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(events.EventStaffRoleChanged), entries[0].ContextMap()["type"])
	assert.Equal(t, "dispatcher closed", entries[0].ContextMap()["error"])
}
