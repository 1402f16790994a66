package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/framehouse/agency-console/internal/domain"
)

// ClientFilter narrows client listings.
type ClientFilter struct {
	AgencyID      *string
	PortalEnabled *bool
	Limit         int
	Offset        int
}

// ClientRepository defines persistence access for client portal accounts.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.ClientAccount) error
	GetByID(ctx context.Context, id string) (*domain.ClientAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.ClientAccount, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetPortalEnabled(ctx context.Context, id string, enabled bool) error
	List(ctx context.Context, filter ClientFilter) ([]domain.ClientAccount, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a Postgres-backed implementation.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, email, password_hash, name, company_name, agency_id, portal_enabled, created_at, updated_at`

func scanClient(row rowScanner) (*domain.ClientAccount, error) {
	var client domain.ClientAccount
	if err := row.Scan(
		&client.ID,
		&client.Email,
		&client.PasswordHash,
		&client.Name,
		&client.CompanyName,
		&client.AgencyID,
		&client.PortalEnabled,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *domain.ClientAccount) error {
	const query = `
        INSERT INTO client_accounts (email, password_hash, name, company_name, agency_id, portal_enabled)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		client.Email,
		client.PasswordHash,
		client.Name,
		client.CompanyName,
		client.AgencyID,
		client.PortalEnabled,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	return mapInsertError(err)
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.ClientAccount, error) {
	query := `SELECT ` + clientColumns + ` FROM client_accounts WHERE id=$1`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*domain.ClientAccount, error) {
	query := `SELECT ` + clientColumns + ` FROM client_accounts WHERE email=$1`
	return scanClient(r.pool.QueryRow(ctx, query, email))
}

func (r *clientRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE client_accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	return execOne(ctx, r.pool, query, passwordHash, id)
}

func (r *clientRepository) SetPortalEnabled(ctx context.Context, id string, enabled bool) error {
	const query = `UPDATE client_accounts SET portal_enabled=$1, updated_at=NOW() WHERE id=$2`
	return execOne(ctx, r.pool, query, enabled, id)
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]domain.ClientAccount, error) {
	query := `SELECT ` + clientColumns + ` FROM client_accounts`
	args := []any{}
	clauses := []string{}

	if filter.AgencyID != nil {
		args = append(args, *filter.AgencyID)
		clauses = append(clauses, fmt.Sprintf("agency_id=$%d", len(args)))
	}
	if filter.PortalEnabled != nil {
		args = append(args, *filter.PortalEnabled)
		clauses = append(clauses, fmt.Sprintf("portal_enabled=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY company_name, name" + pageClause(filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClientAccount
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *client)
	}
	return result, rows.Err()
}
