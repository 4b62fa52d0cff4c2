package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lokafin/lokafin/internal/dashboard"
	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskRefreshOverdue flips open documents past their due date to overdue.
	TaskRefreshOverdue = "settlement:refresh_overdue"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// RefreshOverduePayload selects which document direction to refresh.
type RefreshOverduePayload struct {
	Direction settlement.Direction `json:"direction"`
}

// NewRefreshOverdueTask constructs an overdue-refresh task for one direction.
func NewRefreshOverdueTask(dir settlement.Direction) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshOverduePayload{Direction: dir})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefreshOverdue, data), nil
}

// NewIdempotencyCleanupTask constructs an idempotency cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NewRefreshOverdueHandler returns the Asynq handler for TaskRefreshOverdue.
// The dashboard service may be nil when no cache is configured.
func NewRefreshOverdueHandler(logger *slog.Logger, payables, receivables *settlement.Service, dash *dashboard.Service) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RefreshOverduePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		svc := payables
		if payload.Direction == settlement.DirectionReceivable {
			svc = receivables
		}

		affected, err := svc.RefreshOverdue(ctx)
		if err != nil {
			return err
		}
		logger.Info("overdue refresh finished",
			slog.String("direction", string(payload.Direction)),
			slog.Int64("affected", affected))

		if affected > 0 && dash != nil {
			if err := dash.Invalidate(ctx); err != nil {
				logger.Warn("dashboard invalidation failed", slog.Any("error", err))
			}
		}
		return nil
	}
}

// NewIdempotencyCleanupHandler returns the Asynq handler for TaskIdempotencyCleanup.
func NewIdempotencyCleanupHandler(logger *slog.Logger, store *shared.IdempotencyStore, retention time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := store.Cleanup(ctx, retention); err != nil {
			return err
		}
		logger.Info("idempotency keys pruned", slog.Duration("retention", retention))
		return nil
	}
}
