package banks

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines bank data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Bank, error)
	List(ctx context.Context, search string) ([]Bank, error)
	Create(ctx context.Context, b Bank) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (Bank, error) {
	var b Bank
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM banks WHERE id = $1`, id).Scan(&b.ID, &b.Code, &b.Name)
	if err != nil {
		return Bank{}, shared.MapDBError(err)
	}
	return b, nil
}

func (r *repository) List(ctx context.Context, search string) ([]Bank, error) {
	query := `SELECT id, code, name FROM banks`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR code ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []Bank
	for rows.Next() {
		var b Bank
		if err := rows.Scan(&b.ID, &b.Code, &b.Name); err != nil {
			return nil, shared.MapDBError(err)
		}
		out = append(out, b)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, b Bank) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO banks (code, name) VALUES ($1, $2) RETURNING id`,
		b.Code, b.Name).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}
