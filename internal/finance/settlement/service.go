package settlement

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lokafin/lokafin/internal/shared"
)

var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than zero", shared.ErrValidation)
	ErrInvalidDateRange  = fmt.Errorf("%w: due date must not precede issuance date", shared.ErrValidation)
	ErrDocumentCancelled = fmt.Errorf("%w: document is cancelled", shared.ErrConflict)
	ErrAlreadySettled    = fmt.Errorf("%w: document is already settled", shared.ErrConflict)
	ErrOverpayment       = fmt.Errorf("%w: settlement exceeds amount due", shared.ErrConflict)
	ErrHasEvents         = fmt.Errorf("%w: document has settlement events", shared.ErrConflict)
)

// CounterpartyDirectory checks that a counterparty exists and is active.
type CounterpartyDirectory interface {
	EnsureActive(ctx context.Context, id int64) error
}

// CategoryDirectory checks that a category exists and is active.
type CategoryDirectory interface {
	EnsureActive(ctx context.Context, id int64) error
}

// CompanyDirectory checks that a company exists.
type CompanyDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// AccountDirectory checks that a bank account exists.
type AccountDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// PaymentMethodDirectory checks that a payment method exists.
type PaymentMethodDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// Directories groups the lookup collaborators. Nil members skip their check;
// the wiring in cmd provides all of them.
type Directories struct {
	Companies      CompanyDirectory
	Counterparties CounterpartyDirectory
	Categories     CategoryDirectory
	Accounts       AccountDirectory
	PaymentMethods PaymentMethodDirectory
}

// Service implements the settlement document lifecycle for one direction.
type Service struct {
	repo  Repository
	dir   Direction
	clock shared.Clock
	dirs  Directories
	audit *shared.AuditLogger
}

// NewService constructs a settlement service bound to a direction.
func NewService(repo Repository, dir Direction, clock shared.Clock, dirs Directories, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, dir: dir, clock: clock, dirs: dirs, audit: audit}
}

// Direction returns the direction this service operates on.
func (s *Service) Direction() Direction { return s.dir }

// Create issues a new settlement document. The initial settled amount is
// zero and the status is derived, never taken from input.
func (s *Service) Create(ctx context.Context, in CreateDocumentInput) (Document, error) {
	if err := s.validateCreate(ctx, in); err != nil {
		return Document{}, err
	}

	now := s.clock.Now()
	doc := Document{
		Direction:        s.dir,
		CompanyID:        in.CompanyID,
		CounterpartyID:   in.CounterpartyID,
		AccountID:        in.AccountID,
		CategoryID:       in.CategoryID,
		DocumentNumber:   in.DocumentNumber,
		IssuanceDate:     in.IssuanceDate,
		DueDate:          in.DueDate,
		OriginalAmount:   in.OriginalAmount.Round(Scale),
		SettledAmount:    decimal.Zero,
		DiscountAmount:   in.DiscountAmount.Round(Scale),
		InterestAmount:   in.InterestAmount.Round(Scale),
		FineAmount:       in.FineAmount.Round(Scale),
		Installment:      in.Installment,
		InstallmentCount: in.InstallmentCount,
		Note:             in.Note,
		CreatedBy:        in.ActorLogin,
		CreatedAt:        now,
		ModifiedBy:       in.ActorLogin,
		ModifiedAt:       now,
	}
	if doc.DocumentNumber == "" {
		doc.DocumentNumber = s.generateNumber()
	}
	doc.refresh(now)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertDocument(ctx, doc)
		if err != nil {
			return err
		}
		doc.ID = id
		return nil
	})
	if err != nil {
		return Document{}, err
	}

	s.record(ctx, in.ActorLogin, "create", doc.ID, map[string]any{"amount": doc.OriginalAmount.String()})
	return doc, nil
}

// Get loads a document by id.
func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	return s.repo.GetDocument(ctx, s.dir, id)
}

// GetWithEvents loads a document together with its settlement history.
func (s *Service) GetWithEvents(ctx context.Context, id int64) (DocumentWithEvents, error) {
	doc, err := s.repo.GetDocument(ctx, s.dir, id)
	if err != nil {
		return DocumentWithEvents{}, err
	}
	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return DocumentWithEvents{}, err
	}
	return DocumentWithEvents{Document: doc, Events: events}, nil
}

// List returns documents matching the request, ordered by due date.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Document, error) {
	return s.repo.ListDocuments(ctx, s.dir, req)
}

// Update mutates document fields, re-validating the amount/date invariants
// and re-deriving status. Lowering the original amount below the settled
// amount is rejected to keep the balance invariant.
func (s *Service) Update(ctx context.Context, id int64, in UpdateDocumentInput) (Document, error) {
	var updated Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, s.dir, id)
		if err != nil {
			return err
		}
		if doc.Cancelled {
			return ErrDocumentCancelled
		}

		if in.CounterpartyID != nil {
			if s.dirs.Counterparties != nil {
				if err := s.dirs.Counterparties.EnsureActive(ctx, *in.CounterpartyID); err != nil {
					return err
				}
			}
			doc.CounterpartyID = *in.CounterpartyID
		}
		if in.CategoryID != nil {
			if s.dirs.Categories != nil {
				if err := s.dirs.Categories.EnsureActive(ctx, *in.CategoryID); err != nil {
					return err
				}
			}
			doc.CategoryID = in.CategoryID
		}
		if in.AccountID != nil {
			if s.dirs.Accounts != nil {
				if err := s.dirs.Accounts.Ensure(ctx, *in.AccountID); err != nil {
					return err
				}
			}
			doc.AccountID = in.AccountID
		}
		if in.DocumentNumber != nil {
			doc.DocumentNumber = *in.DocumentNumber
		}
		if in.IssuanceDate != nil {
			doc.IssuanceDate = *in.IssuanceDate
		}
		if in.DueDate != nil {
			doc.DueDate = *in.DueDate
		}
		if in.OriginalAmount != nil {
			amount := in.OriginalAmount.Round(Scale)
			if amount.LessThanOrEqual(decimal.Zero) {
				return ErrInvalidAmount
			}
			if amount.LessThan(doc.SettledAmount) {
				return fmt.Errorf("%w: original amount below settled amount", shared.ErrConflict)
			}
			doc.OriginalAmount = amount
		}
		if in.Note != nil {
			doc.Note = *in.Note
		}
		if doc.DueDate.Before(doc.IssuanceDate) {
			return ErrInvalidDateRange
		}

		now := s.clock.Now()
		doc.ModifiedBy = in.ActorLogin
		doc.ModifiedAt = now
		doc.refresh(now)
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, in.ActorLogin, "update", updated.ID, nil)
	return updated, nil
}

// Cancel marks the document cancelled. Once money has moved, cancellation is
// rejected; the settlement must be reversed via event deletion instead.
func (s *Service) Cancel(ctx context.Context, id int64, actorLogin string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, s.dir, id)
		if err != nil {
			return err
		}
		if doc.Cancelled {
			return ErrDocumentCancelled
		}
		if doc.Status == StatusSettled {
			return ErrAlreadySettled
		}
		if doc.SettledAmount.GreaterThan(decimal.Zero) {
			return ErrHasEvents
		}

		now := s.clock.Now()
		doc.Cancelled = true
		doc.ModifiedBy = actorLogin
		doc.ModifiedAt = now
		doc.refresh(now)
		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorLogin, "cancel", id, nil)
	return nil
}

// Delete removes a document that never settled anything.
func (s *Service) Delete(ctx context.Context, id int64, actorLogin string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, s.dir, id)
		if err != nil {
			return err
		}
		if doc.Status == StatusSettled {
			return ErrAlreadySettled
		}
		count, err := tx.CountEvents(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrHasEvents
		}
		return tx.DeleteDocument(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorLogin, "delete", id, nil)
	return nil
}

// RegisterEvent appends a settlement event, bumps the running total and
// re-derives the status. The document row stays locked for the duration of
// the transaction, so 0 <= settled <= original holds under concurrency.
func (s *Service) RegisterEvent(ctx context.Context, in RegisterEventInput) (Document, error) {
	amount := in.Amount.Round(Scale)
	if amount.LessThanOrEqual(decimal.Zero) {
		return Document{}, ErrInvalidAmount
	}
	if in.AccountID != nil && s.dirs.Accounts != nil {
		if err := s.dirs.Accounts.Ensure(ctx, *in.AccountID); err != nil {
			return Document{}, err
		}
	}
	if in.PaymentMethodID != nil && s.dirs.PaymentMethods != nil {
		if err := s.dirs.PaymentMethods.Ensure(ctx, *in.PaymentMethodID); err != nil {
			return Document{}, err
		}
	}

	var updated Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, s.dir, in.DocumentID)
		if err != nil {
			return err
		}
		if doc.Cancelled {
			return ErrDocumentCancelled
		}
		if doc.SettledAmount.Add(amount).GreaterThan(doc.OriginalAmount) {
			return ErrOverpayment
		}

		now := s.clock.Now()
		ev := Event{
			DocumentID:      doc.ID,
			EventDate:       in.EventDate,
			Amount:          amount,
			DiscountAmount:  in.DiscountAmount.Round(Scale),
			InterestAmount:  in.InterestAmount.Round(Scale),
			FineAmount:      in.FineAmount.Round(Scale),
			AccountID:       in.AccountID,
			PaymentMethodID: in.PaymentMethodID,
			DocumentNumber:  in.DocumentNumber,
			Note:            in.Note,
			CreatedBy:       in.ActorLogin,
			CreatedAt:       now,
		}
		if _, err := tx.InsertEvent(ctx, ev); err != nil {
			return err
		}

		doc.SettledAmount = doc.SettledAmount.Add(amount)
		if doc.SettlementDate == nil {
			eventDate := in.EventDate
			doc.SettlementDate = &eventDate
		}
		doc.ModifiedBy = in.ActorLogin
		doc.ModifiedAt = now
		doc.refresh(now)
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, in.ActorLogin, "register_event", updated.ID, map[string]any{"amount": amount.String()})
	return updated, nil
}

// DeleteEvent reverses one settlement event, decrementing the running total
// and re-deriving the status.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64, actorLogin string) (Document, error) {
	var updated Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ev, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		doc, err := tx.GetDocumentForUpdate(ctx, s.dir, ev.DocumentID)
		if err != nil {
			return err
		}
		if doc.Cancelled {
			return ErrDocumentCancelled
		}

		if err := tx.DeleteEvent(ctx, eventID); err != nil {
			return err
		}
		doc.SettledAmount = doc.SettledAmount.Sub(ev.Amount)
		if doc.SettledAmount.LessThan(decimal.Zero) {
			doc.SettledAmount = decimal.Zero
		}
		if doc.SettledAmount.IsZero() {
			doc.SettlementDate = nil
		}
		now := s.clock.Now()
		doc.ModifiedBy = actorLogin
		doc.ModifiedAt = now
		doc.refresh(now)
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, actorLogin, "delete_event", updated.ID, map[string]any{"event_id": eventID})
	return updated, nil
}

// RefreshOverdue flips open documents past their due date to overdue.
// Invoked by the nightly scheduler.
func (s *Service) RefreshOverdue(ctx context.Context) (int64, error) {
	var affected int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.MarkOverdue(ctx, s.dir, s.clock.Now())
		if err != nil {
			return err
		}
		affected = n
		return nil
	})
	return affected, err
}

func (s *Service) validateCreate(ctx context.Context, in CreateDocumentInput) error {
	if in.OriginalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if in.DueDate.Before(in.IssuanceDate) {
		return ErrInvalidDateRange
	}
	if len(in.DocumentNumber) > 50 {
		return shared.Validationf("document number exceeds 50 characters")
	}
	if s.dirs.Companies != nil {
		if err := s.dirs.Companies.Ensure(ctx, in.CompanyID); err != nil {
			return err
		}
	}
	if s.dirs.Counterparties != nil {
		if err := s.dirs.Counterparties.EnsureActive(ctx, in.CounterpartyID); err != nil {
			return err
		}
	}
	if in.CategoryID != nil && s.dirs.Categories != nil {
		if err := s.dirs.Categories.EnsureActive(ctx, *in.CategoryID); err != nil {
			return err
		}
	}
	if in.AccountID != nil && s.dirs.Accounts != nil {
		if err := s.dirs.Accounts.Ensure(ctx, *in.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) generateNumber() string {
	prefix := "AP"
	if s.dir == DirectionReceivable {
		prefix = "AR"
	}
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) record(ctx context.Context, actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entity := "settlement_" + strings.ToLower(string(s.dir))
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorLogin: actor,
		Action:     action,
		Entity:     entity,
		EntityID:   strconv.FormatInt(id, 10),
		Meta:       meta,
		At:         s.clock.Now(),
	})
}
