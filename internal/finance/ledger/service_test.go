package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/shared"
)

type memoryLedgerRepo struct {
	entries map[int64]Entry
	nextID  int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{entries: make(map[int64]Entry)}
}

func (r *memoryLedgerRepo) Get(ctx context.Context, id int64) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, shared.NotFoundf("ledger entry %d", id)
	}
	return e, nil
}

func (r *memoryLedgerRepo) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if filters.Direction != "" && e.Direction != filters.Direction {
			continue
		}
		if filters.CategoryID != 0 && e.CategoryID != filters.CategoryID {
			continue
		}
		if filters.Confirmed != nil && e.Confirmed != *filters.Confirmed {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryLedgerRepo) Create(ctx context.Context, e Entry) (int64, error) {
	r.nextID++
	e.ID = r.nextID
	r.entries[e.ID] = e
	return e.ID, nil
}

func (r *memoryLedgerRepo) Update(ctx context.Context, e Entry) error {
	if _, ok := r.entries[e.ID]; !ok {
		return shared.NotFoundf("ledger entry %d", e.ID)
	}
	r.entries[e.ID] = e
	return nil
}

func (r *memoryLedgerRepo) Delete(ctx context.Context, id int64) error {
	delete(r.entries, id)
	return nil
}

func (r *memoryLedgerRepo) PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error) {
	totals := PeriodTotals{Inflow: decimal.Zero, Outflow: decimal.Zero}
	for _, e := range r.entries {
		if !e.Confirmed || e.MovementDate.Before(from) || e.MovementDate.After(to) {
			continue
		}
		if e.Direction == DirectionInflow {
			totals.Inflow = totals.Inflow.Add(e.Amount)
		} else {
			totals.Outflow = totals.Outflow.Add(e.Amount)
		}
	}
	return totals, nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newLedgerService(repo *memoryLedgerRepo) *Service {
	return NewService(repo, shared.FixedClock{T: testNow}, Directories{}, nil)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func draftInput(amount string) CreateInput {
	return CreateInput{
		MovementDate: testNow.AddDate(0, 0, -1),
		IssuanceDate: testNow.AddDate(0, 0, -1),
		Direction:    DirectionOutflow,
		Amount:       money(amount),
		CategoryID:   1,
		PayeeID:      2,
		ActorLogin:   "tester",
	}
}

func TestCreateEntry(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(newMemoryLedgerRepo())

	e, err := svc.Create(ctx, draftInput("250.50"))
	require.NoError(t, err)
	require.False(t, e.Confirmed)
	require.Nil(t, e.ConfirmedAt)
	require.True(t, e.Amount.Equal(money("250.50")))
}

func TestCreateEntryValidation(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(newMemoryLedgerRepo())

	in := draftInput("0")
	_, err := svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrInvalidAmount)

	in = draftInput("10.00")
	in.MovementDate = testNow.AddDate(0, 0, 1)
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrFutureMovement)

	in = draftInput("10.00")
	in.Direction = "SIDEWAYS"
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrInvalidDirection)
}

func TestConfirmationFreeze(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(newMemoryLedgerRepo())

	e, err := svc.Create(ctx, draftInput("250.50"))
	require.NoError(t, err)

	e, err = svc.Confirm(ctx, e.ID, "tester")
	require.NoError(t, err)
	require.True(t, e.Confirmed)
	require.NotNil(t, e.ConfirmedAt)

	// Frozen: updates and deletes fail until unconfirmed.
	newAmount := money("300.00")
	_, err = svc.Update(ctx, e.ID, UpdateInput{Amount: &newAmount, ActorLogin: "tester"})
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
	require.ErrorIs(t, svc.Delete(ctx, e.ID, "tester"), ErrAlreadyConfirmed)

	_, err = svc.Confirm(ctx, e.ID, "tester")
	require.ErrorIs(t, err, ErrAlreadyConfirmed)

	e, err = svc.Unconfirm(ctx, e.ID, "tester")
	require.NoError(t, err)
	require.False(t, e.Confirmed)
	require.Nil(t, e.ConfirmedAt)

	e, err = svc.Update(ctx, e.ID, UpdateInput{Amount: &newAmount, ActorLogin: "tester"})
	require.NoError(t, err)
	require.True(t, e.Amount.Equal(newAmount))
}

func TestUnconfirmDraftFails(t *testing.T) {
	ctx := context.Background()
	svc := newLedgerService(newMemoryLedgerRepo())

	e, err := svc.Create(ctx, draftInput("10.00"))
	require.NoError(t, err)
	_, err = svc.Unconfirm(ctx, e.ID, "tester")
	require.ErrorIs(t, err, ErrNotConfirmed)
}

func TestDeleteDraft(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := newLedgerService(repo)

	e, err := svc.Create(ctx, draftInput("10.00"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, e.ID, "tester"))
	_, err = svc.Get(ctx, e.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPeriodTotalsCountConfirmedOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := newLedgerService(repo)

	in := draftInput("100.00")
	in.Direction = DirectionInflow
	confirmedIn, err := svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, confirmedIn.ID, "tester")
	require.NoError(t, err)

	out := draftInput("40.00")
	confirmedOut, err := svc.Create(ctx, out)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, confirmedOut.ID, "tester")
	require.NoError(t, err)

	// Draft entries stay out of the totals.
	_, err = svc.Create(ctx, draftInput("999.00"))
	require.NoError(t, err)

	totals, err := svc.PeriodTotals(ctx, testNow.AddDate(0, -1, 0), testNow)
	require.NoError(t, err)
	require.True(t, totals.Inflow.Equal(money("100.00")))
	require.True(t, totals.Outflow.Equal(money("40.00")))
	require.True(t, totals.Net().Equal(money("60.00")))
}
