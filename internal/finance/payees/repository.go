package payees

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines payee data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Payee, error)
	List(ctx context.Context, filters ListFilters) ([]Payee, error)
	Create(ctx context.Context, p Payee) (int64, error)
	Update(ctx context.Context, p Payee) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, person_type, document_id, email, phone, note, active,
	created_by, created_at, modified_by, modified_at`

func scan(row pgx.Row) (Payee, error) {
	var p Payee
	err := row.Scan(&p.ID, &p.Name, &p.PersonType, &p.DocumentID, &p.Email, &p.Phone,
		&p.Note, &p.Active, &p.CreatedBy, &p.CreatedAt, &p.ModifiedBy, &p.ModifiedAt)
	if err != nil {
		return Payee{}, shared.MapDBError(err)
	}
	return p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Payee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM payees WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Payee, error) {
	query := `SELECT ` + columns + ` FROM payees WHERE 1=1`
	args := []any{}
	idx := 0

	if filters.Search != "" {
		idx++
		query += ` AND (name ILIKE $` + strconv.Itoa(idx) + ` OR document_id ILIKE $` + strconv.Itoa(idx) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.PersonType != "" {
		idx++
		query += ` AND person_type = $` + strconv.Itoa(idx)
		args = append(args, filters.PersonType)
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

	var out []Payee
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, p Payee) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payees (name, person_type, document_id, email, phone, note, active,
			created_by, created_at, modified_by, modified_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		p.Name, p.PersonType, p.DocumentID, p.Email, p.Phone, p.Note, p.Active,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, p Payee) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payees SET name = $1, person_type = $2, document_id = $3, email = $4,
			phone = $5, note = $6, active = $7, modified_by = $8, modified_at = $9
		 WHERE id = $10`,
		p.Name, p.PersonType, p.DocumentID, p.Email, p.Phone, p.Note, p.Active,
		p.ModifiedBy, p.ModifiedAt, p.ID)
	return shared.MapDBError(err)
}
