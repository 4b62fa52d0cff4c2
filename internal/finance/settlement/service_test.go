package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/shared"
)

type memoryRepo struct {
	documents   map[int64]Document
	events      map[int64]Event
	nextDocID   int64
	nextEventID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		documents: make(map[int64]Document),
		events:    make(map[int64]Event),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetDocument(ctx context.Context, dir Direction, id int64) (Document, error) {
	doc, ok := r.documents[id]
	if !ok || doc.Direction != dir {
		return Document{}, shared.NotFoundf("document %d", id)
	}
	return doc, nil
}

func (r *memoryRepo) ListDocuments(ctx context.Context, dir Direction, req ListRequest) ([]Document, error) {
	var out []Document
	for _, doc := range r.documents {
		if doc.Direction != dir {
			continue
		}
		if req.Status != "" && doc.Status != req.Status {
			continue
		}
		if req.CounterpartyID != 0 && doc.CounterpartyID != req.CounterpartyID {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *memoryRepo) ListEvents(ctx context.Context, documentID int64) ([]Event, error) {
	var out []Event
	for _, ev := range r.events {
		if ev.DocumentID == documentID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (tx *memoryTx) GetDocumentForUpdate(ctx context.Context, dir Direction, id int64) (Document, error) {
	return tx.repo.GetDocument(ctx, dir, id)
}

func (tx *memoryTx) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	tx.repo.nextDocID++
	doc.ID = tx.repo.nextDocID
	tx.repo.documents[doc.ID] = doc
	return doc.ID, nil
}

func (tx *memoryTx) UpdateDocument(ctx context.Context, doc Document) error {
	if _, ok := tx.repo.documents[doc.ID]; !ok {
		return shared.NotFoundf("document %d", doc.ID)
	}
	tx.repo.documents[doc.ID] = doc
	return nil
}

func (tx *memoryTx) DeleteDocument(ctx context.Context, id int64) error {
	delete(tx.repo.documents, id)
	return nil
}

func (tx *memoryTx) GetEvent(ctx context.Context, id int64) (Event, error) {
	ev, ok := tx.repo.events[id]
	if !ok {
		return Event{}, shared.NotFoundf("event %d", id)
	}
	return ev, nil
}

func (tx *memoryTx) InsertEvent(ctx context.Context, ev Event) (int64, error) {
	tx.repo.nextEventID++
	ev.ID = tx.repo.nextEventID
	tx.repo.events[ev.ID] = ev
	return ev.ID, nil
}

func (tx *memoryTx) DeleteEvent(ctx context.Context, id int64) error {
	delete(tx.repo.events, id)
	return nil
}

func (tx *memoryTx) CountEvents(ctx context.Context, documentID int64) (int, error) {
	count := 0
	for _, ev := range tx.repo.events {
		if ev.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (tx *memoryTx) MarkOverdue(ctx context.Context, dir Direction, now time.Time) (int64, error) {
	var affected int64
	for id, doc := range tx.repo.documents {
		if doc.Direction != dir || doc.Status != StatusOpen || doc.Cancelled {
			continue
		}
		if doc.DueDate.Before(now) {
			doc.Status = StatusOverdue
			doc.ModifiedAt = now
			tx.repo.documents[id] = doc
			affected++
		}
	}
	return affected, nil
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, DirectionPayable, shared.FixedClock{T: testNow}, Directories{}, nil)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createInput(amount string) CreateDocumentInput {
	return CreateDocumentInput{
		CompanyID:      1,
		CounterpartyID: 10,
		DocumentNumber: "NF-001",
		IssuanceDate:   testNow.AddDate(0, -1, 0),
		DueDate:        testNow.AddDate(0, 0, 15),
		OriginalAmount: money(amount),
		ActorLogin:     "tester",
	}
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("1000.00"))
	require.NoError(t, err)
	require.Equal(t, StatusOpen, doc.Status)
	require.True(t, doc.SettledAmount.IsZero())
	require.True(t, doc.Balance().Equal(money("1000.00")))
	require.Equal(t, "tester", doc.CreatedBy)
}

func TestCreateDocumentOverdueOnArrival(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := createInput("1000.00")
	in.DueDate = testNow.AddDate(0, 0, -5)
	doc, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, doc.Status)
}

func TestCreateDocumentRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := createInput("0")
	_, err := svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = createInput("100.00")
	in.DueDate = in.IssuanceDate.AddDate(0, 0, -1)
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCreateDocumentGeneratesNumber(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := createInput("100.00")
	in.DocumentNumber = ""
	doc, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, doc.DocumentNumber)
	require.Contains(t, doc.DocumentNumber, "AP-")
}

func TestPartialSettlementLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	in := createInput("1000.00")
	in.DueDate = testNow.AddDate(0, 0, -5)
	doc, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, doc.Status)

	doc, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("400.00"),
		ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, doc.Status)
	require.True(t, doc.SettledAmount.Equal(money("400.00")))
	require.True(t, doc.Balance().Equal(money("600.00")))
	require.NotNil(t, doc.SettlementDate)

	doc, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("600.00"),
		ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, StatusSettled, doc.Status)
	require.True(t, doc.Balance().IsZero())

	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("0.01"),
		ActorLogin: "tester",
	})
	require.ErrorIs(t, err, ErrOverpayment)
}

func TestRegisterEventRejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)

	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("100.01"),
		ActorLogin: "tester",
	})
	require.ErrorIs(t, err, ErrOverpayment)
}

func TestRegisterEventRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)

	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("-5.00"),
		ActorLogin: "tester",
	})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRegisterEventOnCancelledDocument(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, doc.ID, "tester"))

	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID,
		EventDate:  testNow,
		Amount:     money("50.00"),
		ActorLogin: "tester",
	})
	require.ErrorIs(t, err, ErrDocumentCancelled)
}

func TestSettlementDateSetOnFirstEventOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("300.00"))
	require.NoError(t, err)

	first := testNow.AddDate(0, 0, 1)
	doc, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID, EventDate: first, Amount: money("100.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, first, *doc.SettlementDate)

	second := testNow.AddDate(0, 0, 2)
	doc, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID, EventDate: second, Amount: money("100.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, first, *doc.SettlementDate)
}

func TestDeleteEventReopensDocument(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("500.00"))
	require.NoError(t, err)

	doc, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID, EventDate: testNow, Amount: money("500.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, StatusSettled, doc.Status)

	var eventID int64
	for id := range repo.events {
		eventID = id
	}
	doc, err = svc.DeleteEvent(ctx, eventID, "tester")
	require.NoError(t, err)
	require.Equal(t, StatusOpen, doc.Status)
	require.True(t, doc.SettledAmount.IsZero())
	require.Nil(t, doc.SettlementDate)
}

func TestCancelRules(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("200.00"))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, doc.ID, "tester"))

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)

	// Cancelling twice conflicts.
	require.ErrorIs(t, svc.Cancel(ctx, doc.ID, "tester"), ErrDocumentCancelled)

	// A document with payments cannot be cancelled.
	paid, err := svc.Create(ctx, createInput("200.00"))
	require.NoError(t, err)
	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: paid.ID, EventDate: testNow, Amount: money("50.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Cancel(ctx, paid.ID, "tester"), ErrHasEvents)
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("200.00"))
	require.NoError(t, err)

	newAmount := money("300.00")
	note := "renegotiated"
	doc, err = svc.Update(ctx, doc.ID, UpdateDocumentInput{
		OriginalAmount: &newAmount,
		Note:           &note,
		ActorLogin:     "tester",
	})
	require.NoError(t, err)
	require.True(t, doc.OriginalAmount.Equal(newAmount))
	require.Equal(t, "renegotiated", doc.Note)

	// Lowering original below settled is rejected.
	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID, EventDate: testNow, Amount: money("250.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	lower := money("100.00")
	_, err = svc.Update(ctx, doc.ID, UpdateDocumentInput{OriginalAmount: &lower, ActorLogin: "tester"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteDocumentRules(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, doc.ID, "tester"))
	_, err = svc.Get(ctx, doc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	withEvents, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)
	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: withEvents.ID, EventDate: testNow, Amount: money("40.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, withEvents.ID, "tester"), ErrHasEvents)
}

func TestRefreshOverdue(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	past := createInput("100.00")
	past.DueDate = testNow.AddDate(0, 0, 5)
	doc, err := svc.Create(ctx, past)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, doc.Status)

	// Move the stored due date behind the clock to simulate time passing.
	stored := repo.documents[doc.ID]
	stored.DueDate = testNow.AddDate(0, 0, -1)
	repo.documents[doc.ID] = stored

	affected, err := svc.RefreshOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	got, err := svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, got.Status)
}

func TestGetWithEvents(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo)

	doc, err := svc.Create(ctx, createInput("100.00"))
	require.NoError(t, err)
	_, err = svc.RegisterEvent(ctx, RegisterEventInput{
		DocumentID: doc.ID, EventDate: testNow, Amount: money("60.00"), ActorLogin: "tester",
	})
	require.NoError(t, err)

	full, err := svc.GetWithEvents(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, full.Events, 1)
	require.True(t, full.SettledAmount.Equal(money("60.00")))
}
