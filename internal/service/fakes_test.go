package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/events"
	"github.com/framehouse/agency-console/internal/repository"
	"github.com/framehouse/agency-console/internal/repository/memory"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionSecret:           "test-secret-test-secret-test-secret!",
		BcryptCost:              bcrypt.MinCost,
		LoginMaxFailures:        3,
		LoginLockoutMinutes:     15,
		PasswordResetTTLMinutes: 30,
		InviteTTLHours:          72,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func strPtr(s string) *string { return &s }

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	staff      *memory.StaffRepository
	clients    *memory.ClientRepository
	agencies   *memory.AgencyRepository
	tokens     *memory.AccountTokenRepository
	dispatcher *recordingDispatcher
	identities *IdentityStore
	auth       *AuthService
	accounts   *AccountService
}

func newFixture(t *testing.T, attempts repository.LoginAttemptRepository) *fixture {
	t.Helper()
	cfg := testAuthConfig()
	f := &fixture{
		staff:      memory.NewStaffRepository(),
		clients:    memory.NewClientRepository(),
		agencies:   memory.NewAgencyRepository(),
		dispatcher: &recordingDispatcher{},
	}
	f.tokens = memory.NewAccountTokenRepository(f.staff, f.clients)
	f.identities = NewIdentityStore(cfg, IdentityDependencies{
		StaffRepo:    f.staff,
		ClientRepo:   f.clients,
		AttemptsRepo: attempts,
	}, nil)
	f.auth = NewAuthService(cfg, AuthDependencies{
		Identities: f.identities,
		StaffRepo:  f.staff,
		ClientRepo: f.clients,
		TokenRepo:  f.tokens,
		Dispatcher: f.dispatcher,
	}, nil)
	f.accounts = NewAccountService(cfg, AccountDependencies{
		StaffRepo:   f.staff,
		ClientRepo:  f.clients,
		AgencyRepo:  f.agencies,
		AuthService: f.auth,
		Dispatcher:  f.dispatcher,
	}, nil)
	return f
}

func (f *fixture) seedStaff(t *testing.T, email, password string, role domain.Role, agencyID *string) *domain.StaffUser {
	t.Helper()
	staff := &domain.StaffUser{Email: email, PasswordHash: mustHash(t, password), Name: "Staff " + email, Role: role, AgencyID: agencyID}
	require.NoError(t, f.staff.Create(context.Background(), staff))
	return staff
}

func (f *fixture) seedClient(t *testing.T, email, password string, portalEnabled bool, agencyID *string) *domain.ClientAccount {
	t.Helper()
	client := &domain.ClientAccount{Email: email, Name: "Client " + email, CompanyName: "Brand", AgencyID: agencyID, PortalEnabled: portalEnabled}
	if password != "" {
		hash := mustHash(t, password)
		client.PasswordHash = &hash
	}
	require.NoError(t, f.clients.Create(context.Background(), client))
	return client
}

func staffSession(staff *domain.StaffUser) *domain.Session {
	now := time.Now()
	return &domain.Session{
		Subject:   domain.StaffSubject(staff),
		Kind:      domain.SessionKindStaff,
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.SessionTTL),
	}
}

func clientSession(client *domain.ClientAccount) *domain.Session {
	now := time.Now()
	return &domain.Session{
		Subject:   domain.ClientSubject(client),
		Kind:      domain.SessionKindClient,
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.SessionTTL),
	}
}

// uuidColumnStaff rejects malformed ids the way a UUID column does.
type uuidColumnStaff struct {
	*memory.StaffRepository
	lookups int
}

func (r *uuidColumnStaff) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	r.lookups++
	if _, err := uuid.Parse(id); err != nil {
		return nil, &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}
	}
	return r.StaffRepository.GetByID(ctx, id)
}

// flakyClients fails password writes while failSetPassword is set.
type flakyClients struct {
	*memory.ClientRepository
	failSetPassword bool
}

func (r *flakyClients) SetPassword(ctx context.Context, id, passwordHash string) error {
	if r.failSetPassword {
		return errors.New("write failed")
	}
	return r.ClientRepository.SetPassword(ctx, id, passwordHash)
}

type failingDispatcher struct{}

func (failingDispatcher) Publish(context.Context, events.Event) error {
	return errors.New("dispatcher closed")
}

func (failingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
