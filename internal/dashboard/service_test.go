package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/finance/ledger"
	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/shared"
)

type stubDashboardRepo struct {
	calls int
}

func (s *stubDashboardRepo) DirectionSummary(ctx context.Context, dir settlement.Direction) (DirectionSummary, error) {
	s.calls++
	if dir == settlement.DirectionPayable {
		return DirectionSummary{
			OpenTotal: decimal.RequireFromString("1500.00"), OpenCount: 3,
			OverdueTotal: decimal.RequireFromString("200.00"), OverdueCount: 1,
		}, nil
	}
	return DirectionSummary{
		OpenTotal: decimal.RequireFromString("900.00"), OpenCount: 2,
	}, nil
}

func (s *stubDashboardRepo) Aging(ctx context.Context, dir settlement.Direction, asOf time.Time) ([]AgingBucket, error) {
	return []AgingBucket{{Label: "current", Total: decimal.Zero}}, nil
}

type stubTotals struct{}

func (stubTotals) PeriodTotals(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error) {
	return ledger.PeriodTotals{
		Inflow:  decimal.RequireFromString("1234.56"),
		Outflow: decimal.RequireFromString("234.56"),
	}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestSummaryCachesAggregates(t *testing.T) {
	ctx := context.Background()
	repo := &stubDashboardRepo{}
	clock := shared.FixedClock{T: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, stubTotals{}, newTestCache(t), clock)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 3, first.Payables.OpenCount)
	callsAfterFirst := repo.calls

	second, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, callsAfterFirst, repo.calls)

	// Invalidation forces a reload.
	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Summary(ctx, from, to)
	require.NoError(t, err)
	require.Greater(t, repo.calls, callsAfterFirst)
}

func TestFormatMoney(t *testing.T) {
	clock := shared.FixedClock{T: time.Now()}
	svc := NewService(&stubDashboardRepo{}, stubTotals{}, nil, clock)

	require.Equal(t, "R$ 1.234,56", svc.FormatMoney(1234.56))
	require.Equal(t, "R$ 0,00", svc.FormatMoney(0))
}
