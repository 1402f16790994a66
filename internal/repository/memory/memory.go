// Package memory provides in-process implementations of the account
// repositories. They back development runs without Postgres and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/repository"
)

// StaffRepository stores staff users in memory.
type StaffRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.StaffUser
}

// NewStaffRepository returns an empty store.
func NewStaffRepository() *StaffRepository {
	return &StaffRepository{byID: map[string]*domain.StaffUser{}}
}

var _ repository.StaffRepository = (*StaffRepository)(nil)

func (r *StaffRepository) Create(_ context.Context, staff *domain.StaffUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == staff.Email {
			return repository.ErrDuplicate
		}
	}
	staff.ID = uuid.NewString()
	staff.CreatedAt = time.Now().UTC()
	staff.UpdatedAt = staff.CreatedAt
	copied := *staff
	r.byID[staff.ID] = &copied
	return nil
}

func (r *StaffRepository) GetByID(_ context.Context, id string) (*domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *staff
	return &copied, nil
}

func (r *StaffRepository) GetByEmail(_ context.Context, email string) (*domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, staff := range r.byID {
		if staff.Email == email {
			copied := *staff
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *StaffRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.PasswordHash = passwordHash
	staff.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *StaffRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	staff.Role = role
	staff.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *StaffRepository) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StaffUser
	for _, staff := range r.byID {
		if filter.AgencyID != nil && !sameAgency(staff.AgencyID, *filter.AgencyID) {
			continue
		}
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		out = append(out, *staff)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

// ClientRepository stores client accounts in memory.
type ClientRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.ClientAccount
}

// NewClientRepository returns an empty store.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{byID: map[string]*domain.ClientAccount{}}
}

var _ repository.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) Create(_ context.Context, client *domain.ClientAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == client.Email {
			return repository.ErrDuplicate
		}
	}
	client.ID = uuid.NewString()
	client.CreatedAt = time.Now().UTC()
	client.UpdatedAt = client.CreatedAt
	copied := *client
	r.byID[client.ID] = &copied
	return nil
}

func (r *ClientRepository) GetByID(_ context.Context, id string) (*domain.ClientAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *client
	return &copied, nil
}

func (r *ClientRepository) GetByEmail(_ context.Context, email string) (*domain.ClientAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, client := range r.byID {
		if client.Email == email {
			copied := *client
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *ClientRepository) SetPassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	client.PasswordHash = &passwordHash
	client.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ClientRepository) SetPortalEnabled(_ context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	client.PortalEnabled = enabled
	client.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ClientRepository) List(_ context.Context, filter repository.ClientFilter) ([]domain.ClientAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClientAccount
	for _, client := range r.byID {
		if filter.AgencyID != nil && !sameAgency(client.AgencyID, *filter.AgencyID) {
			continue
		}
		if filter.PortalEnabled != nil && client.PortalEnabled != *filter.PortalEnabled {
			continue
		}
		out = append(out, *client)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

// AccountTokenRepository stores invite and reset tokens in memory. Redeeming
// writes the password through the given account repositories.
type AccountTokenRepository struct {
	mu      sync.Mutex
	byToken map[string]*domain.AccountToken
	staff   repository.StaffRepository
	clients repository.ClientRepository
}

// NewAccountTokenRepository returns an empty store.
func NewAccountTokenRepository(staff repository.StaffRepository, clients repository.ClientRepository) *AccountTokenRepository {
	return &AccountTokenRepository{
		byToken: map[string]*domain.AccountToken{},
		staff:   staff,
		clients: clients,
	}
}

var _ repository.AccountTokenRepository = (*AccountTokenRepository)(nil)

func (r *AccountTokenRepository) Create(_ context.Context, token *domain.AccountToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC()
	copied := *token
	r.byToken[token.Token] = &copied
	return nil
}

func (r *AccountTokenRepository) GetByToken(_ context.Context, token string) (*domain.AccountToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byToken[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

// Redeem holds the store lock across the password write, so the token is
// marked used only after the write succeeded and at most once.
func (r *AccountTokenRepository) Redeem(ctx context.Context, token *domain.AccountToken, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byToken[token.Token]
	if !ok || stored.ID != token.ID {
		return pgx.ErrNoRows
	}
	if stored.UsedAt != nil {
		return repository.ErrTokenConsumed
	}

	var err error
	switch stored.Kind {
	case domain.SessionKindStaff:
		err = r.staff.UpdatePassword(ctx, stored.SubjectID, passwordHash)
	case domain.SessionKindClient:
		err = r.clients.SetPassword(ctx, stored.SubjectID, passwordHash)
	default:
		err = errors.New("unknown account kind")
	}
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	stored.UsedAt = &now
	return nil
}

// AgencyRepository stores agencies in memory.
type AgencyRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Agency
}

// NewAgencyRepository returns an empty store.
func NewAgencyRepository() *AgencyRepository {
	return &AgencyRepository{byID: map[string]*domain.Agency{}}
}

var _ repository.AgencyRepository = (*AgencyRepository)(nil)

func (r *AgencyRepository) Create(_ context.Context, agency *domain.Agency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agency.ID = uuid.NewString()
	agency.CreatedAt = time.Now().UTC()
	copied := *agency
	r.byID[agency.ID] = &copied
	return nil
}

func (r *AgencyRepository) GetByID(_ context.Context, id string) (*domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agency, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *agency
	return &copied, nil
}

func (r *AgencyRepository) List(_ context.Context, limit, offset int) ([]domain.Agency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Agency, 0, len(r.byID))
	for _, agency := range r.byID {
		out = append(out, *agency)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func sameAgency(agencyID *string, want string) bool {
	return agencyID != nil && *agencyID == want
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
