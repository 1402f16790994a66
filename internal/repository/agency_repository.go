package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/framehouse/agency-console/internal/domain"
)

// AgencyRepository persists partner agencies.
type AgencyRepository interface {
	Create(ctx context.Context, agency *domain.Agency) error
	GetByID(ctx context.Context, id string) (*domain.Agency, error)
	List(ctx context.Context, limit, offset int) ([]domain.Agency, error)
}

type agencyRepository struct {
	pool *pgxpool.Pool
}

// NewAgencyRepository returns a Postgres-backed implementation.
func NewAgencyRepository(pool *pgxpool.Pool) AgencyRepository {
	return &agencyRepository{pool: pool}
}

func (r *agencyRepository) Create(ctx context.Context, agency *domain.Agency) error {
	const query = `INSERT INTO agencies (name) VALUES ($1) RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, agency.Name).Scan(&agency.ID, &agency.CreatedAt)
	return mapInsertError(err)
}

func (r *agencyRepository) GetByID(ctx context.Context, id string) (*domain.Agency, error) {
	const query = `SELECT id, name, created_at FROM agencies WHERE id=$1`
	var agency domain.Agency
	if err := r.pool.QueryRow(ctx, query, id).Scan(&agency.ID, &agency.Name, &agency.CreatedAt); err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *agencyRepository) List(ctx context.Context, limit, offset int) ([]domain.Agency, error) {
	query := `SELECT id, name, created_at FROM agencies ORDER BY name` + pageClause(limit, offset)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agency
	for rows.Next() {
		var agency domain.Agency
		if err := rows.Scan(&agency.ID, &agency.Name, &agency.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, agency)
	}
	return result, rows.Err()
}
