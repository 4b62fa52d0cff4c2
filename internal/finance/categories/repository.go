package categories

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines category data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Category, error)
	List(ctx context.Context, filters ListFilters) ([]Category, error)
	CountActiveChildren(ctx context.Context, parentID int64) (int, error)
	Create(ctx context.Context, c Category) (int64, error)
	Update(ctx context.Context, c Category) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, kind, parent_id, active, created_by, created_at, modified_by, modified_at`

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.ParentID, &c.Active,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt)
	if err != nil {
		return Category{}, shared.MapDBError(err)
	}
	return c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Category, error) {
	query := `SELECT ` + columns + ` FROM categories WHERE 1=1`
	args := []any{}
	idx := 0

	if filters.Kind != "" {
		idx++
		query += ` AND kind = $` + strconv.Itoa(idx)
		args = append(args, filters.Kind)
	}
	if filters.ParentID != nil {
		idx++
		query += ` AND parent_id = $` + strconv.Itoa(idx)
		args = append(args, *filters.ParentID)
	}
	if filters.ActiveOnly {
		query += ` AND active = true`
	}
	if filters.Search != "" {
		idx++
		query += ` AND name ILIKE $` + strconv.Itoa(idx)
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) CountActiveChildren(ctx context.Context, parentID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = $1 AND active = true`,
		parentID).Scan(&count)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return count, nil
}

func (r *repository) Create(ctx context.Context, c Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, kind, parent_id, active, created_by, created_at, modified_by, modified_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		c.Name, c.Kind, c.ParentID, c.Active,
		c.CreatedBy, c.CreatedAt, c.ModifiedBy, c.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, c Category) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, kind = $2, parent_id = $3, active = $4,
		 modified_by = $5, modified_at = $6 WHERE id = $7`,
		c.Name, c.Kind, c.ParentID, c.Active, c.ModifiedBy, c.ModifiedAt, c.ID)
	return shared.MapDBError(err)
}
