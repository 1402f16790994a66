package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/framehouse/agency-console/internal/domain"
)

const loginFailurePrefix = "login:failures:"

// LoginAttemptRepository counts failed logins per account inside a sliding window.
type LoginAttemptRepository interface {
	Failures(ctx context.Context, kind domain.SessionKind, email string) (int64, error)
	RecordFailure(ctx context.Context, kind domain.SessionKind, email string, window time.Duration) (int64, error)
	Reset(ctx context.Context, kind domain.SessionKind, email string) error
}

type loginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client) LoginAttemptRepository {
	return &loginAttemptRepository{client: client}
}

func loginFailureKey(kind domain.SessionKind, email string) string {
	return loginFailurePrefix + string(kind) + ":" + strings.ToLower(strings.TrimSpace(email))
}

func (r *loginAttemptRepository) Failures(ctx context.Context, kind domain.SessionKind, email string) (int64, error) {
	n, err := r.client.Get(ctx, loginFailureKey(kind, email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RecordFailure increments the counter; the window starts at the first failure.
func (r *loginAttemptRepository) RecordFailure(ctx context.Context, kind domain.SessionKind, email string, window time.Duration) (int64, error) {
	key := loginFailureKey(kind, email)
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, kind domain.SessionKind, email string) error {
	return r.client.Del(ctx, loginFailureKey(kind, email)).Err()
}
