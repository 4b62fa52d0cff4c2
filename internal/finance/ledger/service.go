package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokafin/lokafin/internal/shared"
)

const scale = 2

var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be greater than zero", shared.ErrValidation)
	ErrFutureMovement   = fmt.Errorf("%w: movement date is in the future", shared.ErrValidation)
	ErrInvalidDirection = fmt.Errorf("%w: unknown direction", shared.ErrValidation)
	ErrAlreadyConfirmed = fmt.Errorf("%w: entry is confirmed", shared.ErrConflict)
	ErrNotConfirmed     = fmt.Errorf("%w: entry is not confirmed", shared.ErrConflict)
)

// CategoryDirectory checks that a category exists and is active.
type CategoryDirectory interface {
	EnsureActive(ctx context.Context, id int64) error
}

// PayeeDirectory checks that a payee exists and is active.
type PayeeDirectory interface {
	EnsureActive(ctx context.Context, id int64) error
}

// AccountDirectory checks that a bank account exists.
type AccountDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// PaymentMethodDirectory checks that a payment method exists.
type PaymentMethodDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// Directories groups the lookup collaborators. Nil members skip their check.
type Directories struct {
	Categories     CategoryDirectory
	Payees         PayeeDirectory
	Accounts       AccountDirectory
	PaymentMethods PaymentMethodDirectory
}

// Service implements the ledger entry lifecycle.
type Service struct {
	repo  Repository
	clock shared.Clock
	dirs  Directories
	audit *shared.AuditLogger
}

// NewService constructs the ledger service.
func NewService(repo Repository, clock shared.Clock, dirs Directories, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, clock: clock, dirs: dirs, audit: audit}
}

// Create records a draft entry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	amount := in.Amount.Round(scale)
	if amount.LessThanOrEqual(decimal.Zero) {
		return Entry{}, ErrInvalidAmount
	}
	if !in.Direction.Valid() {
		return Entry{}, ErrInvalidDirection
	}
	now := s.clock.Now()
	if in.MovementDate.After(now) {
		return Entry{}, ErrFutureMovement
	}
	if err := s.checkRefs(ctx, in.CategoryID, in.PayeeID, in.AccountID, in.PaymentMethodID); err != nil {
		return Entry{}, err
	}

	e := Entry{
		MovementDate:     in.MovementDate,
		IssuanceDate:     in.IssuanceDate,
		Direction:        in.Direction,
		Amount:           amount,
		CategoryID:       in.CategoryID,
		PayeeID:          in.PayeeID,
		AccountID:        in.AccountID,
		PaymentMethodID:  in.PaymentMethodID,
		DocumentNumber:   in.DocumentNumber,
		Installment:      in.Installment,
		InstallmentCount: in.InstallmentCount,
		Note:             in.Note,
		CreatedBy:        in.ActorLogin,
		CreatedAt:        now,
		ModifiedBy:       in.ActorLogin,
		ModifiedAt:       now,
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	s.record(ctx, in.ActorLogin, "create", id)
	return e, nil
}

// Get loads an entry by id.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// List returns entries matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Entry, error) {
	return s.repo.List(ctx, filters)
}

// PeriodTotals aggregates confirmed movements over a date range.
func (s *Service) PeriodTotals(ctx context.Context, from, to time.Time) (PeriodTotals, error) {
	return s.repo.PeriodTotals(ctx, from, to)
}

// Update mutates a draft entry. Confirmed entries are frozen.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Confirmed {
		return Entry{}, ErrAlreadyConfirmed
	}

	now := s.clock.Now()
	if in.MovementDate != nil {
		if in.MovementDate.After(now) {
			return Entry{}, ErrFutureMovement
		}
		e.MovementDate = *in.MovementDate
	}
	if in.IssuanceDate != nil {
		e.IssuanceDate = *in.IssuanceDate
	}
	if in.Direction != nil {
		if !in.Direction.Valid() {
			return Entry{}, ErrInvalidDirection
		}
		e.Direction = *in.Direction
	}
	if in.Amount != nil {
		amount := in.Amount.Round(scale)
		if amount.LessThanOrEqual(decimal.Zero) {
			return Entry{}, ErrInvalidAmount
		}
		e.Amount = amount
	}
	if in.CategoryID != nil {
		if s.dirs.Categories != nil {
			if err := s.dirs.Categories.EnsureActive(ctx, *in.CategoryID); err != nil {
				return Entry{}, err
			}
		}
		e.CategoryID = *in.CategoryID
	}
	if in.PayeeID != nil {
		if s.dirs.Payees != nil {
			if err := s.dirs.Payees.EnsureActive(ctx, *in.PayeeID); err != nil {
				return Entry{}, err
			}
		}
		e.PayeeID = *in.PayeeID
	}
	if in.AccountID != nil {
		if s.dirs.Accounts != nil {
			if err := s.dirs.Accounts.Ensure(ctx, *in.AccountID); err != nil {
				return Entry{}, err
			}
		}
		e.AccountID = in.AccountID
	}
	if in.PaymentMethodID != nil {
		if s.dirs.PaymentMethods != nil {
			if err := s.dirs.PaymentMethods.Ensure(ctx, *in.PaymentMethodID); err != nil {
				return Entry{}, err
			}
		}
		e.PaymentMethodID = in.PaymentMethodID
	}
	if in.DocumentNumber != nil {
		e.DocumentNumber = *in.DocumentNumber
	}
	if in.Note != nil {
		e.Note = *in.Note
	}

	e.ModifiedBy = in.ActorLogin
	e.ModifiedAt = now
	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	s.record(ctx, in.ActorLogin, "update", id)
	return e, nil
}

// Delete removes a draft entry. Confirmed entries must be unconfirmed first.
func (s *Service) Delete(ctx context.Context, id int64, actorLogin string) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Confirmed {
		return ErrAlreadyConfirmed
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "delete", id)
	return nil
}

// Confirm freezes an entry and stamps the confirmation date.
func (s *Service) Confirm(ctx context.Context, id int64, actorLogin string) (Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if e.Confirmed {
		return Entry{}, ErrAlreadyConfirmed
	}
	now := s.clock.Now()
	e.Confirmed = true
	e.ConfirmedAt = &now
	e.ModifiedBy = actorLogin
	e.ModifiedAt = now
	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	s.record(ctx, actorLogin, "confirm", id)
	return e, nil
}

// Unconfirm reverts an entry to draft, clearing the confirmation date.
func (s *Service) Unconfirm(ctx context.Context, id int64, actorLogin string) (Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if !e.Confirmed {
		return Entry{}, ErrNotConfirmed
	}
	e.Confirmed = false
	e.ConfirmedAt = nil
	e.ModifiedBy = actorLogin
	e.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	s.record(ctx, actorLogin, "unconfirm", id)
	return e, nil
}

func (s *Service) checkRefs(ctx context.Context, categoryID, payeeID int64, accountID, paymentMethodID *int64) error {
	if s.dirs.Categories != nil {
		if err := s.dirs.Categories.EnsureActive(ctx, categoryID); err != nil {
			return err
		}
	}
	if s.dirs.Payees != nil {
		if err := s.dirs.Payees.EnsureActive(ctx, payeeID); err != nil {
			return err
		}
	}
	if accountID != nil && s.dirs.Accounts != nil {
		if err := s.dirs.Accounts.Ensure(ctx, *accountID); err != nil {
			return err
		}
	}
	if paymentMethodID != nil && s.dirs.PaymentMethods != nil {
		if err := s.dirs.PaymentMethods.Ensure(ctx, *paymentMethodID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor, action string, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorLogin: actor,
		Action:     action,
		Entity:     "ledger_entry",
		EntityID:   strconv.FormatInt(id, 10),
		At:         s.clock.Now(),
	})
}
