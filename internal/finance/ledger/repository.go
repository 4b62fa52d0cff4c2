package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines ledger entry data access.
type Repository interface {
	Get(ctx context.Context, id int64) (Entry, error)
	List(ctx context.Context, filters ListFilters) ([]Entry, error)
	Create(ctx context.Context, e Entry) (int64, error)
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id int64) error
	PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, movement_date, issuance_date, direction, amount,
	category_id, payee_id, account_id, payment_method_id, document_number,
	confirmed, confirmed_at, installment, installment_count, note,
	created_by, created_at, modified_by, modified_at`

func scan(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.MovementDate, &e.IssuanceDate, &e.Direction, &e.Amount,
		&e.CategoryID, &e.PayeeID, &e.AccountID, &e.PaymentMethodID, &e.DocumentNumber,
		&e.Confirmed, &e.ConfirmedAt, &e.Installment, &e.InstallmentCount, &e.Note,
		&e.CreatedBy, &e.CreatedAt, &e.ModifiedBy, &e.ModifiedAt,
	)
	if err != nil {
		return Entry{}, shared.MapDBError(err)
	}
	return e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM ledger_entries WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	query := `SELECT ` + columns + ` FROM ledger_entries WHERE 1=1`
	args := []any{}
	idx := 0

	next := func(cond string, arg any) {
		idx++
		query += cond + strconv.Itoa(idx)
		args = append(args, arg)
	}
	if !filters.DateFrom.IsZero() {
		next(` AND movement_date >= $`, filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		next(` AND movement_date <= $`, filters.DateTo)
	}
	if filters.Direction != "" {
		next(` AND direction = $`, filters.Direction)
	}
	if filters.CategoryID != 0 {
		next(` AND category_id = $`, filters.CategoryID)
	}
	if filters.PayeeID != 0 {
		next(` AND payee_id = $`, filters.PayeeID)
	}
	if filters.AccountID != 0 {
		next(` AND account_id = $`, filters.AccountID)
	}
	if filters.Confirmed != nil {
		next(` AND confirmed = $`, *filters.Confirmed)
	}
	if filters.AmountMin != nil {
		next(` AND amount >= $`, *filters.AmountMin)
	}
	if filters.AmountMax != nil {
		next(` AND amount <= $`, *filters.AmountMax)
	}
	if filters.DocumentNumber != "" {
		next(` AND document_number ILIKE $`, "%"+filters.DocumentNumber+"%")
	}
	query += ` ORDER BY movement_date DESC, id DESC`
	if filters.Limit > 0 {
		next(` LIMIT $`, filters.Limit)
		next(` OFFSET $`, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ledger_entries (
			movement_date, issuance_date, direction, amount,
			category_id, payee_id, account_id, payment_method_id, document_number,
			confirmed, confirmed_at, installment, installment_count, note,
			created_by, created_at, modified_by, modified_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id`,
		e.MovementDate, e.IssuanceDate, e.Direction, e.Amount,
		e.CategoryID, e.PayeeID, e.AccountID, e.PaymentMethodID, e.DocumentNumber,
		e.Confirmed, e.ConfirmedAt, e.Installment, e.InstallmentCount, e.Note,
		e.CreatedBy, e.CreatedAt, e.ModifiedBy, e.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ledger_entries SET
			movement_date = $1, issuance_date = $2, direction = $3, amount = $4,
			category_id = $5, payee_id = $6, account_id = $7, payment_method_id = $8,
			document_number = $9, confirmed = $10, confirmed_at = $11, note = $12,
			modified_by = $13, modified_at = $14
		 WHERE id = $15`,
		e.MovementDate, e.IssuanceDate, e.Direction, e.Amount,
		e.CategoryID, e.PayeeID, e.AccountID, e.PaymentMethodID,
		e.DocumentNumber, e.Confirmed, e.ConfirmedAt, e.Note,
		e.ModifiedBy, e.ModifiedAt, e.ID)
	return shared.MapDBError(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	return shared.MapDBError(err)
}

// PeriodTotals sums confirmed movements only; drafts do not feed aggregation.
func (r *repository) PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error) {
	var inflow, outflow decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = $1), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = $2), 0)
		 FROM ledger_entries
		 WHERE confirmed = true AND movement_date >= $3 AND movement_date <= $4`,
		DirectionInflow, DirectionOutflow, from, to,
	).Scan(&inflow, &outflow)
	if err != nil {
		return PeriodTotals{}, shared.MapDBError(err)
	}
	return PeriodTotals{Inflow: inflow, Outflow: outflow}, nil
}
