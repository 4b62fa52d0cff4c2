// Package dashboard aggregates the financial position: confirmed cash
// movement over a period, outstanding payables and receivables, and aging of
// overdue documents. Results are cached in redis because these queries scan
// whole tables and the numbers only move when someone posts.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lokafin/lokafin/internal/finance/ledger"
	"github.com/lokafin/lokafin/internal/finance/settlement"
	"github.com/lokafin/lokafin/internal/shared"
)

// LedgerTotals supplies confirmed movement aggregates.
type LedgerTotals interface {
	PeriodTotals(ctx context.Context, from, to time.Time) (ledger.PeriodTotals, error)
}

// Summary is the dashboard payload.
type Summary struct {
	PeriodFrom       time.Time            `json:"period_from"`
	PeriodTo         time.Time            `json:"period_to"`
	Inflow           string               `json:"inflow"`
	Outflow          string               `json:"outflow"`
	Net              string               `json:"net"`
	Payables         DirectionSummary     `json:"payables"`
	Receivables      DirectionSummary     `json:"receivables"`
	PayablesAging    []AgingBucket        `json:"payables_aging"`
	ReceivablesAging []AgingBucket        `json:"receivables_aging"`
}

// Service computes and caches dashboard summaries.
type Service struct {
	repo    Repository
	totals  LedgerTotals
	cache   *Cache
	clock   shared.Clock
	printer *message.Printer
}

// NewService constructs the dashboard service.
func NewService(repo Repository, totals LedgerTotals, cache *Cache, clock shared.Clock) *Service {
	return &Service{
		repo:    repo,
		totals:  totals,
		cache:   cache,
		clock:   clock,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Summary builds the dashboard for a period, served from cache when fresh.
func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	ver, err := s.cache.Version(ctx)
	if err != nil {
		return Summary{}, err
	}
	key := fmt.Sprintf("dashboard:summary:%s:%s:%d",
		from.Format("2006-01-02"), to.Format("2006-01-02"), ver)

	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.build(ctx, from, to)
	})
	if err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Invalidate drops all cached summaries. Called after settlement or
// confirmation activity.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) build(ctx context.Context, from, to time.Time) (Summary, error) {
	now := s.clock.Now()

	var (
		totals                ledger.PeriodTotals
		payables, receivables DirectionSummary
		payAging, recvAging   []AgingBucket
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.totals.PeriodTotals(ctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		payables, err = s.repo.DirectionSummary(ctx, settlement.DirectionPayable)
		return err
	})
	g.Go(func() error {
		var err error
		receivables, err = s.repo.DirectionSummary(ctx, settlement.DirectionReceivable)
		return err
	})
	g.Go(func() error {
		var err error
		payAging, err = s.repo.Aging(ctx, settlement.DirectionPayable, now)
		return err
	})
	g.Go(func() error {
		var err error
		recvAging, err = s.repo.Aging(ctx, settlement.DirectionReceivable, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summary{
		PeriodFrom:       from,
		PeriodTo:         to,
		Inflow:           s.FormatMoney(totals.Inflow.InexactFloat64()),
		Outflow:          s.FormatMoney(totals.Outflow.InexactFloat64()),
		Net:              s.FormatMoney(totals.Net().InexactFloat64()),
		Payables:         payables,
		Receivables:      receivables,
		PayablesAging:    payAging,
		ReceivablesAging: recvAging,
	}, nil
}

// FormatMoney renders a value in Brazilian conventions, e.g. "R$ 1.234,56".
// Display only; arithmetic stays in decimals.
func (s *Service) FormatMoney(v float64) string {
	return s.printer.Sprintf("R$ %.2f", v)
}
