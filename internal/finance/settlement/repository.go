package settlement

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/platform/db"
	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines settlement data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetDocument(ctx context.Context, dir Direction, id int64) (Document, error)
	ListDocuments(ctx context.Context, dir Direction, req ListRequest) ([]Document, error)
	ListEvents(ctx context.Context, documentID int64) ([]Event, error)
}

// TxRepository defines operations within a transaction. Mutations of a
// document's running total go through GetDocumentForUpdate, which takes a
// row lock so concurrent partial settlements serialize per document.
type TxRepository interface {
	GetDocumentForUpdate(ctx context.Context, dir Direction, id int64) (Document, error)
	InsertDocument(ctx context.Context, doc Document) (int64, error)
	UpdateDocument(ctx context.Context, doc Document) error
	DeleteDocument(ctx context.Context, id int64) error

	GetEvent(ctx context.Context, id int64) (Event, error)
	InsertEvent(ctx context.Context, ev Event) (int64, error)
	DeleteEvent(ctx context.Context, id int64) error
	CountEvents(ctx context.Context, documentID int64) (int, error)

	MarkOverdue(ctx context.Context, dir Direction, now time.Time) (int64, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const documentColumns = `id, direction, company_id, counterparty_id, account_id, category_id,
	document_number, issuance_date, due_date, settlement_date,
	original_amount, settled_amount, discount_amount, interest_amount, fine_amount,
	cancelled, status, installment, installment_count, note,
	created_by, created_at, modified_by, modified_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.Direction, &d.CompanyID, &d.CounterpartyID, &d.AccountID, &d.CategoryID,
		&d.DocumentNumber, &d.IssuanceDate, &d.DueDate, &d.SettlementDate,
		&d.OriginalAmount, &d.SettledAmount, &d.DiscountAmount, &d.InterestAmount, &d.FineAmount,
		&d.Cancelled, &d.Status, &d.Installment, &d.InstallmentCount, &d.Note,
		&d.CreatedBy, &d.CreatedAt, &d.ModifiedBy, &d.ModifiedAt,
	)
	if err != nil {
		return Document{}, shared.MapDBError(err)
	}
	return d, nil
}

func (r *pgRepository) GetDocument(ctx context.Context, dir Direction, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM settlement_documents WHERE id = $1 AND direction = $2`,
		id, dir)
	return scanDocument(row)
}

func (r *pgRepository) ListDocuments(ctx context.Context, dir Direction, req ListRequest) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM settlement_documents WHERE direction = $1`
	args := []any{dir}
	idx := 1

	next := func(cond string, arg any) {
		idx++
		query += cond + intToPlaceholder(idx)
		args = append(args, arg)
	}
	if req.Status != "" {
		next(` AND status = $`, req.Status)
	}
	if req.CompanyID != 0 {
		next(` AND company_id = $`, req.CompanyID)
	}
	if req.CounterpartyID != 0 {
		next(` AND counterparty_id = $`, req.CounterpartyID)
	}
	if !req.DueFrom.IsZero() {
		next(` AND due_date >= $`, req.DueFrom)
	}
	if !req.DueTo.IsZero() {
		next(` AND due_date <= $`, req.DueTo)
	}
	query += ` ORDER BY due_date`
	if req.Limit > 0 {
		next(` LIMIT $`, req.Limit)
		next(` OFFSET $`, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, shared.MapDBError(rows.Err())
}

const eventColumns = `id, document_id, event_date, amount,
	discount_amount, interest_amount, fine_amount,
	account_id, payment_method_id, document_number, note, created_by, created_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.DocumentID, &e.EventDate, &e.Amount,
		&e.DiscountAmount, &e.InterestAmount, &e.FineAmount,
		&e.AccountID, &e.PaymentMethodID, &e.DocumentNumber, &e.Note, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return Event{}, shared.MapDBError(err)
	}
	return e, nil
}

func (r *pgRepository) ListEvents(ctx context.Context, documentID int64) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM settlement_events WHERE document_id = $1 ORDER BY event_date, id`,
		documentID)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, shared.MapDBError(rows.Err())
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) GetDocumentForUpdate(ctx context.Context, dir Direction, id int64) (Document, error) {
	row := r.tx.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM settlement_documents WHERE id = $1 AND direction = $2 FOR UPDATE`,
		id, dir)
	return scanDocument(row)
}

func (r *pgTxRepository) InsertDocument(ctx context.Context, d Document) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO settlement_documents (
			direction, company_id, counterparty_id, account_id, category_id,
			document_number, issuance_date, due_date, settlement_date,
			original_amount, settled_amount, discount_amount, interest_amount, fine_amount,
			cancelled, status, installment, installment_count, note,
			created_by, created_at, modified_by, modified_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		RETURNING id`,
		d.Direction, d.CompanyID, d.CounterpartyID, d.AccountID, d.CategoryID,
		d.DocumentNumber, d.IssuanceDate, d.DueDate, d.SettlementDate,
		d.OriginalAmount, d.SettledAmount, d.DiscountAmount, d.InterestAmount, d.FineAmount,
		d.Cancelled, d.Status, d.Installment, d.InstallmentCount, d.Note,
		d.CreatedBy, d.CreatedAt, d.ModifiedBy, d.ModifiedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *pgTxRepository) UpdateDocument(ctx context.Context, d Document) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE settlement_documents SET
			counterparty_id = $1, account_id = $2, category_id = $3,
			document_number = $4, issuance_date = $5, due_date = $6, settlement_date = $7,
			original_amount = $8, settled_amount = $9,
			discount_amount = $10, interest_amount = $11, fine_amount = $12,
			cancelled = $13, status = $14, note = $15,
			modified_by = $16, modified_at = $17
		WHERE id = $18`,
		d.CounterpartyID, d.AccountID, d.CategoryID,
		d.DocumentNumber, d.IssuanceDate, d.DueDate, d.SettlementDate,
		d.OriginalAmount, d.SettledAmount,
		d.DiscountAmount, d.InterestAmount, d.FineAmount,
		d.Cancelled, d.Status, d.Note,
		d.ModifiedBy, d.ModifiedAt, d.ID,
	)
	return shared.MapDBError(err)
}

func (r *pgTxRepository) DeleteDocument(ctx context.Context, id int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM settlement_documents WHERE id = $1`, id)
	return shared.MapDBError(err)
}

func (r *pgTxRepository) GetEvent(ctx context.Context, id int64) (Event, error) {
	row := r.tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM settlement_events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *pgTxRepository) InsertEvent(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO settlement_events (
			document_id, event_date, amount,
			discount_amount, interest_amount, fine_amount,
			account_id, payment_method_id, document_number, note, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`,
		e.DocumentID, e.EventDate, e.Amount,
		e.DiscountAmount, e.InterestAmount, e.FineAmount,
		e.AccountID, e.PaymentMethodID, e.DocumentNumber, e.Note, e.CreatedBy, e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *pgTxRepository) DeleteEvent(ctx context.Context, id int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM settlement_events WHERE id = $1`, id)
	return shared.MapDBError(err)
}

func (r *pgTxRepository) CountEvents(ctx context.Context, documentID int64) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM settlement_events WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return count, nil
}

func (r *pgTxRepository) MarkOverdue(ctx context.Context, dir Direction, now time.Time) (int64, error) {
	// Bulk form of DeriveStatus rule 3: open, past due, not cancelled.
	tag, err := r.tx.Exec(ctx,
		`UPDATE settlement_documents
		 SET status = $1, modified_at = $2
		 WHERE direction = $3 AND status = $4 AND cancelled = false AND due_date < $2`,
		StatusOverdue, now, dir, StatusOpen)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return tag.RowsAffected(), nil
}

func intToPlaceholder(n int) string {
	return strconv.Itoa(n)
}
