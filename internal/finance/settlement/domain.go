// Package settlement implements the payable/receivable document lifecycle:
// issue, partial settlement events, status derivation, cancellation. The two
// directions share one implementation; payables and receivables are the same
// contract with opposite semantic direction.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction distinguishes accounts payable from accounts receivable.
type Direction string

const (
	DirectionPayable    Direction = "PAYABLE"
	DirectionReceivable Direction = "RECEIVABLE"
)

// Status enumerates settlement document statuses. Status is always derived
// via DeriveStatus; it is never accepted as external input except through
// the explicit cancel flag.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusSettled   Status = "SETTLED"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
)

// Scale is the number of fractional digits carried by monetary fields.
const Scale = 2

// Document is a single payable or receivable obligation.
type Document struct {
	ID               int64
	Direction        Direction
	CompanyID        int64
	CounterpartyID   int64
	AccountID        *int64
	CategoryID       *int64
	DocumentNumber   string
	IssuanceDate     time.Time
	DueDate          time.Time
	SettlementDate   *time.Time
	OriginalAmount   decimal.Decimal
	SettledAmount    decimal.Decimal
	DiscountAmount   decimal.Decimal
	InterestAmount   decimal.Decimal
	FineAmount       decimal.Decimal
	Cancelled        bool
	Status           Status
	Installment      int
	InstallmentCount int
	Note             string
	CreatedBy        string
	CreatedAt        time.Time
	ModifiedBy       string
	ModifiedAt       time.Time
}

// Balance returns the amount still owed on the document.
func (d Document) Balance() decimal.Decimal {
	return d.OriginalAmount.Sub(d.SettledAmount)
}

// Event is one partial or full payment/receipt applied against a document.
type Event struct {
	ID              int64
	DocumentID      int64
	EventDate       time.Time
	Amount          decimal.Decimal
	DiscountAmount  decimal.Decimal
	InterestAmount  decimal.Decimal
	FineAmount      decimal.Decimal
	AccountID       *int64
	PaymentMethodID *int64
	DocumentNumber  string
	Note            string
	CreatedBy       string
	CreatedAt       time.Time
}

// DocumentWithEvents bundles a document with its settlement history.
type DocumentWithEvents struct {
	Document
	Events []Event
}

// --- Input DTOs ---

// CreateDocumentInput for issuing a new document.
type CreateDocumentInput struct {
	CompanyID        int64
	CounterpartyID   int64
	AccountID        *int64
	CategoryID       *int64
	DocumentNumber   string
	IssuanceDate     time.Time
	DueDate          time.Time
	OriginalAmount   decimal.Decimal
	DiscountAmount   decimal.Decimal
	InterestAmount   decimal.Decimal
	FineAmount       decimal.Decimal
	Installment      int
	InstallmentCount int
	Note             string
	ActorLogin       string
}

// UpdateDocumentInput carries the mutable fields; nil pointers leave the
// current value untouched.
type UpdateDocumentInput struct {
	CounterpartyID *int64
	AccountID      *int64
	CategoryID     *int64
	DocumentNumber *string
	IssuanceDate   *time.Time
	DueDate        *time.Time
	OriginalAmount *decimal.Decimal
	Note           *string
	ActorLogin     string
}

// RegisterEventInput records a settlement event against a document.
type RegisterEventInput struct {
	DocumentID      int64
	EventDate       time.Time
	Amount          decimal.Decimal
	DiscountAmount  decimal.Decimal
	InterestAmount  decimal.Decimal
	FineAmount      decimal.Decimal
	AccountID       *int64
	PaymentMethodID *int64
	DocumentNumber  string
	Note            string
	ActorLogin      string
}

// ListRequest filters document listings.
type ListRequest struct {
	Status         Status
	CompanyID      int64
	CounterpartyID int64
	DueFrom        time.Time
	DueTo          time.Time
	Limit          int
	Offset         int
}
