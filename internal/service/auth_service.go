package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/events"
	"github.com/framehouse/agency-console/internal/repository"
)

// AuthService coordinates login and password flows for both account kinds.
type AuthService struct {
	identities *IdentityStore
	staff      repository.StaffRepository
	clients    repository.ClientRepository
	tokens     repository.AccountTokenRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	Identities *IdentityStore
	StaffRepo  repository.StaffRepository
	ClientRepo repository.ClientRepository
	TokenRepo  repository.AccountTokenRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		identities: deps.Identities,
		staff:      deps.StaffRepo,
		clients:    deps.ClientRepo,
		tokens:     deps.TokenRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
		now:        time.Now,
	}
}

// LoginStaff authenticates staff and returns the subject to put in the session.
// The role is read from the store at every login.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (domain.SessionSubject, error) {
	staff, err := s.identities.AuthenticateStaff(ctx, email, password)
	if err != nil {
		return domain.SessionSubject{}, err
	}
	return domain.StaffSubject(staff), nil
}

// LoginClient authenticates a portal client.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (domain.SessionSubject, error) {
	client, err := s.identities.AuthenticateClient(ctx, email, password)
	if err != nil {
		return domain.SessionSubject{}, err
	}
	return domain.ClientSubject(client), nil
}

// RequestPasswordReset issues a reset token when email belongs to an account of
// the given kind. Unknown addresses return (nil, nil) so callers answer uniformly.
func (s *AuthService) RequestPasswordReset(ctx context.Context, kind domain.SessionKind, email string) (*domain.AccountToken, error) {
	email = normalizeEmail(email)

	var subjectID string
	switch kind {
	case domain.SessionKindStaff:
		staff, err := s.staff.GetByEmail(ctx, email)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		subjectID = staff.ID
	case domain.SessionKindClient:
		client, err := s.clients.GetByEmail(ctx, email)
		if err != nil {
			return nil, ignoreNoRows(err)
		}
		subjectID = client.ID
	default:
		return nil, errors.New("unknown account kind")
	}

	token, err := s.issueToken(ctx, kind, subjectID, domain.TokenPurposePasswordReset, s.resetTTL)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventPasswordResetRequested, subjectID, nil, events.PasswordResetRequestedPayload{
		Kind:      kind,
		Email:     email,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}))
	return token, nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	return s.redeem(ctx, domain.TokenPurposePasswordReset, tokenStr, newPassword)
}

// ActivateClient redeems a portal invitation and sets the client's first password.
func (s *AuthService) ActivateClient(ctx context.Context, tokenStr, password string) error {
	return s.redeem(ctx, domain.TokenPurposeInvite, tokenStr, password)
}

// ChangePassword verifies the current password of the session's account before
// replacing it. Existing sessions stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, session *domain.Session, currentPassword, newPassword string) error {
	if session == nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	var currentHash string
	switch session.Kind {
	case domain.SessionKindStaff:
		staff, err := s.staff.GetByID(ctx, session.Subject.ID)
		if err != nil {
			return err
		}
		currentHash = staff.PasswordHash
	case domain.SessionKindClient:
		client, err := s.clients.GetByID(ctx, session.Subject.ID)
		if err != nil {
			return err
		}
		if !client.Activated() {
			return ErrIncompleteAccount
		}
		currentHash = *client.PasswordHash
	default:
		return ErrInvalidCredentials
	}

	if err := auth.ComparePassword(currentHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, session.Kind, session.Subject.ID, newPassword)
}

func (s *AuthService) redeem(ctx context.Context, purpose domain.TokenPurpose, tokenStr, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	token, err := s.tokens.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}
	if token.Purpose != purpose || !token.Usable(s.now()) {
		return ErrInvalidToken
	}
	if purpose == domain.TokenPurposeInvite && token.Kind != domain.SessionKindClient {
		return ErrInvalidToken
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.tokens.Redeem(ctx, token, hash); err != nil {
		if errors.Is(err, repository.ErrTokenConsumed) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, kind domain.SessionKind, id, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	switch kind {
	case domain.SessionKindStaff:
		return s.staff.UpdatePassword(ctx, id, hash)
	case domain.SessionKindClient:
		return s.clients.SetPassword(ctx, id, hash)
	}
	return errors.New("unknown account kind")
}

func (s *AuthService) issueToken(ctx context.Context, kind domain.SessionKind, subjectID string, purpose domain.TokenPurpose, ttl time.Duration) (*domain.AccountToken, error) {
	token := &domain.AccountToken{
		Kind:      kind,
		SubjectID: subjectID,
		Purpose:   purpose,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

// publishEvent hands the event to the dispatcher. Delivery failures are logged
// and never fail the operation that raised the event.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
