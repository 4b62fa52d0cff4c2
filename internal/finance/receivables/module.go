// Package receivables instantiates the settlement engine for money owed to
// the company by its clients.
package receivables

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/shared"
)

// Module bundles the receivable-side settlement service and its HTTP handler.
type Module struct {
	Service *settlement.Service
	Handler *settlement.Handler
}

// New wires the receivables module.
func New(logger *slog.Logger, pool *pgxpool.Pool, clock shared.Clock, dirs settlement.Directories, idem *shared.IdempotencyStore, audit *shared.AuditLogger) *Module {
	repo := settlement.NewRepository(pool)
	svc := settlement.NewService(repo, settlement.DirectionReceivable, clock, dirs, audit)
	return &Module{
		Service: svc,
		Handler: settlement.NewHandler(logger, svc, idem, "receivables"),
	}
}
