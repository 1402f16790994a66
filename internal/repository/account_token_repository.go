package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/framehouse/agency-console/internal/domain"
)

// ErrTokenConsumed is returned when a single-use token was already redeemed.
var ErrTokenConsumed = errors.New("account token already used")

// AccountTokenRepository manages invite and password reset tokens.
type AccountTokenRepository interface {
	Create(ctx context.Context, token *domain.AccountToken) error
	GetByToken(ctx context.Context, token string) (*domain.AccountToken, error)
	// Redeem consumes the token and stores the password hash on its subject
	// together. Neither happens when the other fails.
	Redeem(ctx context.Context, token *domain.AccountToken, passwordHash string) error
}

type accountTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAccountTokenRepository constructs repository.
func NewAccountTokenRepository(pool *pgxpool.Pool) AccountTokenRepository {
	return &accountTokenRepository{pool: pool}
}

func (r *accountTokenRepository) Create(ctx context.Context, token *domain.AccountToken) error {
	const query = `
        INSERT INTO account_tokens (kind, subject_id, purpose, token, expires_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.Kind,
		token.SubjectID,
		token.Purpose,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *accountTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.AccountToken, error) {
	const query = `
        SELECT id, kind, subject_id, purpose, token, expires_at, used_at, created_at
        FROM account_tokens WHERE token=$1`
	var token domain.AccountToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.Kind,
		&token.SubjectID,
		&token.Purpose,
		&token.Token,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

var passwordUpdates = map[domain.SessionKind]string{
	domain.SessionKindStaff:  `UPDATE staff_users SET password_hash=$1, updated_at=NOW() WHERE id=$2`,
	domain.SessionKindClient: `UPDATE client_accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`,
}

// Redeem runs in one transaction. The guard on used_at makes concurrent
// redemption succeed at most once.
func (r *accountTokenRepository) Redeem(ctx context.Context, token *domain.AccountToken, passwordHash string) error {
	update, ok := passwordUpdates[token.Kind]
	if !ok {
		return errors.New("unknown account kind")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const markUsed = `
        UPDATE account_tokens SET used_at=NOW()
        WHERE id=$1 AND used_at IS NULL`
		cmd, err := tx.Exec(ctx, markUsed, token.ID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrTokenConsumed
		}

		cmd, err = tx.Exec(ctx, update, passwordHash, token.SubjectID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}
