package accounts

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines account data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Account, error)
	ListByCompany(ctx context.Context, companyID int64) ([]Account, error)
	Create(ctx context.Context, a Account) (int64, error)
	Update(ctx context.Context, a Account) error
	ClearDefault(ctx context.Context, companyID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, company_id, bank_id, agency, number, type, description,
	opening_balance, is_default, active, created_by, created_at, modified_by, modified_at`

func scan(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.BankID, &a.Agency, &a.Number, &a.Type,
		&a.Description, &a.OpeningBalance, &a.Default, &a.Active,
		&a.CreatedBy, &a.CreatedAt, &a.ModifiedBy, &a.ModifiedAt)
	if err != nil {
		return Account{}, shared.MapDBError(err)
	}
	return a, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM bank_accounts WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+columns+` FROM bank_accounts WHERE company_id = $1 ORDER BY is_default DESC, number`,
		companyID)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, a Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO bank_accounts (company_id, bank_id, agency, number, type, description,
			opening_balance, is_default, active, created_by, created_at, modified_by, modified_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id`,
		a.CompanyID, a.BankID, a.Agency, a.Number, a.Type, a.Description,
		a.OpeningBalance, a.Default, a.Active,
		a.CreatedBy, a.CreatedAt, a.ModifiedBy, a.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, a Account) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE bank_accounts SET agency = $1, number = $2, description = $3,
			is_default = $4, active = $5, modified_by = $6, modified_at = $7
		 WHERE id = $8`,
		a.Agency, a.Number, a.Description, a.Default, a.Active,
		a.ModifiedBy, a.ModifiedAt, a.ID)
	return shared.MapDBError(err)
}

func (r *repository) ClearDefault(ctx context.Context, companyID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE bank_accounts SET is_default = false WHERE company_id = $1 AND is_default = true`,
		companyID)
	return shared.MapDBError(err)
}
