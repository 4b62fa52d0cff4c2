// Package ledger records individual cash movements. An entry starts as a
// mutable draft; confirming it freezes every field until it is explicitly
// unconfirmed, the bookkeeping equivalent of posting.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction marks an entry as money in or money out.
type Direction string

const (
	DirectionInflow  Direction = "INFLOW"
	DirectionOutflow Direction = "OUTFLOW"
)

// Valid reports whether the direction is a known value.
func (d Direction) Valid() bool {
	return d == DirectionInflow || d == DirectionOutflow
}

// Entry is one dated cash movement.
type Entry struct {
	ID               int64
	MovementDate     time.Time
	IssuanceDate     time.Time
	Direction        Direction
	Amount           decimal.Decimal
	CategoryID       int64
	PayeeID          int64
	AccountID        *int64
	PaymentMethodID  *int64
	DocumentNumber   string
	Confirmed        bool
	ConfirmedAt      *time.Time
	Installment      int
	InstallmentCount int
	Note             string
	CreatedBy        string
	CreatedAt        time.Time
	ModifiedBy       string
	ModifiedAt       time.Time
}

// CreateInput for recording an entry.
type CreateInput struct {
	MovementDate     time.Time
	IssuanceDate     time.Time
	Direction        Direction
	Amount           decimal.Decimal
	CategoryID       int64
	PayeeID          int64
	AccountID        *int64
	PaymentMethodID  *int64
	DocumentNumber   string
	Installment      int
	InstallmentCount int
	Note             string
	ActorLogin       string
}

// UpdateInput carries mutable entry fields; nil leaves the current value.
type UpdateInput struct {
	MovementDate    *time.Time
	IssuanceDate    *time.Time
	Direction       *Direction
	Amount          *decimal.Decimal
	CategoryID      *int64
	PayeeID         *int64
	AccountID       *int64
	PaymentMethodID *int64
	DocumentNumber  *string
	Note            *string
	ActorLogin      string
}

// ListFilters narrows entry listings.
type ListFilters struct {
	DateFrom       time.Time
	DateTo         time.Time
	Direction      Direction
	CategoryID     int64
	PayeeID        int64
	AccountID      int64
	Confirmed      *bool
	AmountMin      *decimal.Decimal
	AmountMax      *decimal.Decimal
	DocumentNumber string
	Limit          int
	Offset         int
}

// PeriodTotals aggregates confirmed movements over a date range.
type PeriodTotals struct {
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
}

// Net returns inflow minus outflow.
func (t PeriodTotals) Net() decimal.Decimal {
	return t.Inflow.Sub(t.Outflow)
}
