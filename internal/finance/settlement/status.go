package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeriveStatus computes the document status from its balance and due date.
// Pure and idempotent: the same inputs always yield the same status, so it
// is safe to invoke after every mutation and from date-driven refreshes.
//
// Precedence: explicit cancellation is terminal, full settlement beats
// overdue, an unpaid document past due is overdue, everything else is open.
func DeriveStatus(settled, original decimal.Decimal, dueDate, now time.Time, cancelled bool) Status {
	switch {
	case cancelled:
		return StatusCancelled
	case settled.GreaterThanOrEqual(original):
		return StatusSettled
	case dueDate.Before(now):
		return StatusOverdue
	default:
		return StatusOpen
	}
}

// refresh re-derives and stores the document status.
func (d *Document) refresh(now time.Time) {
	d.Status = DeriveStatus(d.SettledAmount, d.OriginalAmount, d.DueDate, now, d.Cancelled)
}
