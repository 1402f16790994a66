package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/domain"
	"github.com/framehouse/agency-console/internal/repository"
)

// IdentityStore resolves login credentials against staff and client records.
type IdentityStore struct {
	staff       repository.StaffRepository
	clients     repository.ClientRepository
	attempts    repository.LoginAttemptRepository
	bcryptCost  int
	maxFailures int64
	window      time.Duration
	logger      *zap.Logger
}

// IdentityDependencies bundles the stores the identity lookups read from.
// Attempts is optional; without it logins are not throttled.
type IdentityDependencies struct {
	StaffRepo    repository.StaffRepository
	ClientRepo   repository.ClientRepository
	AttemptsRepo repository.LoginAttemptRepository
}

// NewIdentityStore builds the store.
func NewIdentityStore(cfg config.AuthConfig, deps IdentityDependencies, logger *zap.Logger) *IdentityStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityStore{
		staff:       deps.StaffRepo,
		clients:     deps.ClientRepo,
		attempts:    deps.AttemptsRepo,
		bcryptCost:  cfg.BcryptCost,
		maxFailures: int64(cfg.LoginMaxFailures),
		window:      cfg.LoginLockout(),
		logger:      logger,
	}
}

// AuthenticateStaff returns the staff user owning email if password matches.
func (s *IdentityStore) AuthenticateStaff(ctx context.Context, email, password string) (*domain.StaffUser, error) {
	email = normalizeEmail(email)
	if err := s.checkThrottle(ctx, domain.SessionKindStaff, email); err != nil {
		return nil, err
	}

	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		auth.CompareDecoy(password, s.bcryptCost)
		s.recordFailure(ctx, domain.SessionKindStaff, email)
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		s.recordFailure(ctx, domain.SessionKindStaff, email)
		return nil, ErrInvalidCredentials
	}

	s.resetFailures(ctx, domain.SessionKindStaff, email)
	return staff, nil
}

// AuthenticateClient returns the client account owning email if password matches.
// An account without a password yields ErrIncompleteAccount. Portal status is
// only reported once the password has matched.
func (s *IdentityStore) AuthenticateClient(ctx context.Context, email, password string) (*domain.ClientAccount, error) {
	email = normalizeEmail(email)
	if err := s.checkThrottle(ctx, domain.SessionKindClient, email); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		auth.CompareDecoy(password, s.bcryptCost)
		s.recordFailure(ctx, domain.SessionKindClient, email)
		return nil, ErrInvalidCredentials
	}
	if !client.Activated() {
		return nil, ErrIncompleteAccount
	}
	if err := auth.ComparePassword(*client.PasswordHash, password); err != nil {
		s.recordFailure(ctx, domain.SessionKindClient, email)
		return nil, ErrInvalidCredentials
	}

	s.resetFailures(ctx, domain.SessionKindClient, email)
	if !client.PortalEnabled {
		return nil, ErrPortalDisabled
	}
	return client, nil
}

func (s *IdentityStore) checkThrottle(ctx context.Context, kind domain.SessionKind, email string) error {
	if s.attempts == nil || s.maxFailures <= 0 {
		return nil
	}
	failures, err := s.attempts.Failures(ctx, kind, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.String("kind", string(kind)), zap.Error(err))
		return nil
	}
	if failures >= s.maxFailures {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *IdentityStore) recordFailure(ctx context.Context, kind domain.SessionKind, email string) {
	if s.attempts == nil || s.maxFailures <= 0 {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, kind, email, s.window); err != nil {
		s.logger.Warn("record login failure", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *IdentityStore) resetFailures(ctx context.Context, kind domain.SessionKind, email string) {
	if s.attempts == nil || s.maxFailures <= 0 {
		return
	}
	if err := s.attempts.Reset(ctx, kind, email); err != nil {
		s.logger.Warn("reset login failures", zap.String("kind", string(kind)), zap.Error(err))
	}
}
