package companies

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/lokafin/lokafin/internal/masterdata/shared"
	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines company data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Company, error)
	List(ctx context.Context, filters mdshared.ListFilters) ([]Company, error)
	Create(ctx context.Context, c Company) (int64, error)
	Update(ctx context.Context, c Company) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, trade_name, document_id, active, created_by, created_at, modified_by, modified_at`

func scan(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.TradeName, &c.DocumentID, &c.Active,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
	if err != nil {
		return Company{}, shared.MapDBError(err)
	}
	return c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM companies WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Company, error) {
	query := `SELECT ` + columns + ` FROM companies WHERE 1=1`
	args := []any{}
	idx := 0

	if filters.Search != "" {
		idx++
		query += ` AND (name ILIKE $` + strconv.Itoa(idx) + ` OR trade_name ILIKE $` + strconv.Itoa(idx) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.ActiveOnly {
		query += ` AND active = true`
	}
	query += ` ORDER BY name`
	if filters.Limit > 0 {
		idx++
		query += ` LIMIT $` + strconv.Itoa(idx)
		args = append(args, filters.Limit)
		idx++
		query += ` OFFSET $` + strconv.Itoa(idx)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, c Company) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO companies (name, trade_name, document_id, active,
			created_by, created_at, modified_by, modified_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		c.Name, c.TradeName, c.DocumentID, c.Active,
		c.CreatedBy, c.CreatedAt, c.ModifiedBy, c.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, c Company) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $1, trade_name = $2, document_id = $3, active = $4,
			modified_by = $5, modified_at = $6 WHERE id = $7`,
		c.Name, c.TradeName, c.DocumentID, c.Active, c.ModifiedBy, c.ModifiedAt, c.ID)
	return shared.MapDBError(err)
}
