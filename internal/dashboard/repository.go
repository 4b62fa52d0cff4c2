package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/shared"
)

// DirectionSummary aggregates one direction's outstanding documents.
type DirectionSummary struct {
	OpenTotal    decimal.Decimal `json:"open_total"`
	OpenCount    int             `json:"open_count"`
	OverdueTotal decimal.Decimal `json:"overdue_total"`
	OverdueCount int             `json:"overdue_count"`
}

// AgingBucket is outstanding balance grouped by days past due.
type AgingBucket struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Repository reads dashboard aggregates.
type Repository interface {
	DirectionSummary(ctx context.Context, dir settlement.Direction) (DirectionSummary, error)
	Aging(ctx context.Context, dir settlement.Direction, asOf time.Time) ([]AgingBucket, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DirectionSummary(ctx context.Context, dir settlement.Direction) (DirectionSummary, error) {
	var s DirectionSummary
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(original_amount - settled_amount) FILTER (WHERE status = $2), 0),
			COUNT(*) FILTER (WHERE status = $2),
			COALESCE(SUM(original_amount - settled_amount) FILTER (WHERE status = $3), 0),
			COUNT(*) FILTER (WHERE status = $3)
		 FROM settlement_documents
		 WHERE direction = $1 AND cancelled = false`,
		dir, settlement.StatusOpen, settlement.StatusOverdue,
	).Scan(&s.OpenTotal, &s.OpenCount, &s.OverdueTotal, &s.OverdueCount)
	if err != nil {
		return DirectionSummary{}, shared.MapDBError(err)
	}
	return s, nil
}

// Aging buckets outstanding balances by days past due: current, 1-30, 31-60,
// 61-90, over 90.
func (r *repository) Aging(ctx context.Context, dir settlement.Direction, asOf time.Time) ([]AgingBucket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT
			CASE
				WHEN due_date >= $2 THEN 'current'
				WHEN due_date >= $2 - INTERVAL '30 days' THEN '1-30'
				WHEN due_date >= $2 - INTERVAL '60 days' THEN '31-60'
				WHEN due_date >= $2 - INTERVAL '90 days' THEN '61-90'
				ELSE '90+'
			END AS bucket,
			COALESCE(SUM(original_amount - settled_amount), 0),
			COUNT(*)
		 FROM settlement_documents
		 WHERE direction = $1 AND cancelled = false AND status IN ($3, $4)
		 GROUP BY bucket`,
		dir, asOf, settlement.StatusOpen, settlement.StatusOverdue)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	byLabel := map[string]AgingBucket{}
	for rows.Next() {
		var b AgingBucket
		if err := rows.Scan(&b.Label, &b.Total, &b.Count); err != nil {
			return nil, shared.MapDBError(err)
		}
		byLabel[b.Label] = b
	}
	if err := rows.Err(); err != nil {
		return nil, shared.MapDBError(err)
	}

	labels := []string{"current", "1-30", "31-60", "61-90", "90+"}
	out := make([]AgingBucket, 0, len(labels))
	for _, label := range labels {
		b, ok := byLabel[label]
		if !ok {
			b = AgingBucket{Label: label, Total: decimal.Zero}
		}
		out = append(out, b)
	}
	return out, nil
}
