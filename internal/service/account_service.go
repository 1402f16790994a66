package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/events"
	"github.com/framehouse/agency-console/internal/repository"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

// AccountService manages staff users and client portal accounts from the settings area.
//
// ADMIN manages every account. AGENCY_ADMIN is confined to its own agency and
// can only grant agency roles. Role changes apply from the target's next login.
type AccountService struct {
	staff      repository.StaffRepository
	clients    repository.ClientRepository
	agencies   repository.AgencyRepository
	auth       *AuthService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	inviteTTL  time.Duration
}

// AccountDependencies encapsulates repositories required for account management.
type AccountDependencies struct {
	StaffRepo   repository.StaffRepository
	ClientRepo  repository.ClientRepository
	AgencyRepo  repository.AgencyRepository
	AuthService *AuthService
	Dispatcher  events.Dispatcher
}

// NewAccountService constructs the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		staff:      deps.StaffRepo,
		clients:    deps.ClientRepo,
		agencies:   deps.AgencyRepo,
		auth:       deps.AuthService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		inviteTTL:  cfg.InviteTTL(),
	}
}

// CreateStaffInput describes a new staff account.
type CreateStaffInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
	AgencyID *string
}

// InviteClientInput describes a new client account.
type InviteClientInput struct {
	Email         string
	Name          string
	CompanyName   string
	AgencyID      *string
	PortalEnabled bool
}

// AgencyListFilters define listing parameters.
type AgencyListFilters struct {
	Limit  int
	Offset int
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.Role
	Limit  int
	Offset int
}

// ClientListFilters define listing parameters.
type ClientListFilters struct {
	PortalEnabled *bool
	Limit         int
	Offset        int
}

func requireManager(actor *domain.Session) error {
	if actor == nil || actor.Kind != domain.SessionKindStaff {
		return apperrors.NewForbidden("staff session required")
	}
	switch actor.Subject.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleAgencyAdmin:
		if actor.Subject.AgencyID == nil {
			return apperrors.NewForbidden("agency admin without agency")
		}
		return nil
	}
	return apperrors.NewForbidden("admin role required")
}

// agencyScope returns the agency the actor is confined to, or nil for ADMIN.
func agencyScope(actor *domain.Session) *string {
	if actor.Subject.Role == domain.RoleAgencyAdmin {
		return actor.Subject.AgencyID
	}
	return nil
}

func inScope(scope, agencyID *string) bool {
	if scope == nil {
		return true
	}
	return agencyID != nil && *agencyID == *scope
}

func canGrant(actor *domain.Session, role domain.Role) bool {
	if actor.Subject.Role == domain.RoleAdmin {
		return role.IsStaff()
	}
	return role == domain.RoleAgencyAdmin || role == domain.RoleAgencyTeam
}

// CreateStaff adds a staff account with an initial password.
func (s *AccountService) CreateStaff(ctx context.Context, actor *domain.Session, input CreateStaffInput) (*domain.StaffUser, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if err := validateStaffRole(input.Role); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if !canGrant(actor, input.Role) {
		return nil, apperrors.NewForbidden("role cannot be granted")
	}
	if scope := agencyScope(actor); scope != nil {
		input.AgencyID = scope
	} else if err := s.requireAgency(ctx, input.AgencyID); err != nil {
		return nil, err
	}
	if (input.Role == domain.RoleAgencyAdmin || input.Role == domain.RoleAgencyTeam) && input.AgencyID == nil {
		return nil, apperrors.NewValidationError("agency roles require an agency", nil)
	}

	if _, err := s.staff.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	staff := &domain.StaffUser{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         input.Role,
		AgencyID:     input.AgencyID,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, insertError(err, input.Email, input.AgencyID)
	}
	return staff, nil
}

// EnsureBootstrapAdmin creates an ADMIN with the given credentials unless an
// account already holds the email. It reports whether an account was created.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	if _, err := s.staff.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if err := validateEmail(email); err != nil {
		return false, err
	}
	if err := validatePassword(password); err != nil {
		return false, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	staff := &domain.StaffUser{Email: email, PasswordHash: hash, Name: "Administrator", Role: domain.RoleAdmin}
	if err := s.staff.Create(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ChangeStaffRole updates a staff member's role. Sessions issued before the
// change keep the old role until they expire.
func (s *AccountService) ChangeStaffRole(ctx context.Context, actor *domain.Session, staffID string, role domain.Role) (*domain.StaffUser, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := validateStaffRole(role); err != nil {
		return nil, err
	}
	if staffID == actor.Subject.ID {
		return nil, apperrors.NewForbidden("cannot change own role")
	}
	if !canGrant(actor, role) {
		return nil, apperrors.NewForbidden("role cannot be granted")
	}
	if !validID(staffID) {
		return nil, apperrors.NewNotFound("staff", map[string]any{"id": staffID})
	}

	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, notFound("staff", staffID, err)
	}
	if !inScope(agencyScope(actor), staff.AgencyID) || !canGrant(actor, staff.Role) {
		return nil, apperrors.NewNotFound("staff", map[string]any{"id": staffID})
	}
	if staff.Role == role {
		return staff, nil
	}

	oldRole := staff.Role
	if err := s.staff.UpdateRole(ctx, staff.ID, role); err != nil {
		return nil, err
	}
	staff.Role = role
	s.publish(ctx, events.New(events.EventStaffRoleChanged, staff.ID, actorOf(actor), events.StaffRoleChangedPayload{
		OldRole: oldRole,
		NewRole: role,
	}))
	return staff, nil
}

// ListStaff returns staff visible to the actor.
func (s *AccountService) ListStaff(ctx context.Context, actor *domain.Session, filters StaffListFilters) ([]domain.StaffUser, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, repository.StaffFilter{
		AgencyID: agencyScope(actor),
		Role:     filters.Role,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	})
}

// InviteClient creates a client account without a password and issues an
// activation token delivered through the client_invited event.
func (s *AccountService) InviteClient(ctx context.Context, actor *domain.Session, input InviteClientInput) (*domain.ClientAccount, *domain.AccountToken, error) {
	if err := requireManager(actor); err != nil {
		return nil, nil, err
	}
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	if err := validateEmail(input.Email); err != nil {
		return nil, nil, err
	}
	if input.Name == "" {
		return nil, nil, apperrors.NewValidationError("name required", nil)
	}
	if scope := agencyScope(actor); scope != nil {
		input.AgencyID = scope
	} else if err := s.requireAgency(ctx, input.AgencyID); err != nil {
		return nil, nil, err
	}

	if _, err := s.clients.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	client := &domain.ClientAccount{
		Email:         input.Email,
		Name:          input.Name,
		CompanyName:   input.CompanyName,
		AgencyID:      input.AgencyID,
		PortalEnabled: input.PortalEnabled,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, nil, insertError(err, input.Email, input.AgencyID)
	}

	token, err := s.auth.issueToken(ctx, domain.SessionKindClient, client.ID, domain.TokenPurposeInvite, s.inviteTTL)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.New(events.EventClientInvited, client.ID, actorOf(actor), events.ClientInvitedPayload{
		Email:       client.Email,
		CompanyName: client.CompanyName,
		Token:       token.Token,
		ExpiresAt:   token.ExpiresAt,
	}))
	return client, token, nil
}

// SetPortalEnabled toggles portal access. Disabling blocks new logins; sessions
// already issued stay valid until they expire.
func (s *AccountService) SetPortalEnabled(ctx context.Context, actor *domain.Session, clientID string, enabled bool) (*domain.ClientAccount, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if !validID(clientID) {
		return nil, apperrors.NewNotFound("client", map[string]any{"id": clientID})
	}
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, notFound("client", clientID, err)
	}
	if !inScope(agencyScope(actor), client.AgencyID) {
		return nil, apperrors.NewNotFound("client", map[string]any{"id": clientID})
	}
	if client.PortalEnabled == enabled {
		return client, nil
	}

	if err := s.clients.SetPortalEnabled(ctx, client.ID, enabled); err != nil {
		return nil, err
	}
	client.PortalEnabled = enabled
	s.publish(ctx, events.New(events.EventPortalAccessChanged, client.ID, actorOf(actor), events.PortalAccessChangedPayload{Enabled: enabled}))
	return client, nil
}

// ListClients returns clients visible to the actor.
func (s *AccountService) ListClients(ctx context.Context, actor *domain.Session, filters ClientListFilters) ([]domain.ClientAccount, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.clients.List(ctx, repository.ClientFilter{
		AgencyID:      agencyScope(actor),
		PortalEnabled: filters.PortalEnabled,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
	})
}

// CreateAgency registers a partner agency. Only ADMIN may create agencies.
func (s *AccountService) CreateAgency(ctx context.Context, actor *domain.Session, name string) (*domain.Agency, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if actor.Subject.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	agency := &domain.Agency{Name: name}
	if err := s.agencies.Create(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}

// ListAgencies returns every agency for ADMIN and only its own for AGENCY_ADMIN.
func (s *AccountService) ListAgencies(ctx context.Context, actor *domain.Session, filters AgencyListFilters) ([]domain.Agency, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if scope := agencyScope(actor); scope != nil {
		agency, err := s.agencies.GetByID(ctx, *scope)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.Agency{*agency}, nil
	}
	return s.agencies.List(ctx, filters.Limit, filters.Offset)
}

// requireAgency rejects request-supplied agency ids that are malformed or
// unknown. An agency admin's own agency comes from its session and is not rechecked.
func (s *AccountService) requireAgency(ctx context.Context, agencyID *string) error {
	if agencyID == nil {
		return nil
	}
	unknown := apperrors.NewValidationError("unknown agency", map[string]any{"agency_id": *agencyID})
	if !validID(*agencyID) {
		return unknown
	}
	if _, err := s.agencies.GetByID(ctx, *agencyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return unknown
		}
		return err
	}
	return nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func actorOf(session *domain.Session) *events.Actor {
	return &events.Actor{Kind: session.Kind, ID: session.Subject.ID}
}

func insertError(err error, email string, agencyID *string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	case errors.Is(err, repository.ErrUnknownReference):
		details := map[string]any{}
		if agencyID != nil {
			details["agency_id"] = *agencyID
		}
		return apperrors.NewValidationError("unknown agency", details)
	}
	return err
}

// validID reports whether id can address a row; account ids are UUIDs.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(resource, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
