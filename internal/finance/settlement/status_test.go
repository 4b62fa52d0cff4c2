package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)
	original := decimal.RequireFromString("1000.00")

	cases := []struct {
		name      string
		settled   string
		dueDate   time.Time
		cancelled bool
		want      Status
	}{
		{"open when unpaid before due", "0", future, false, StatusOpen},
		{"open when partially paid before due", "400.00", future, false, StatusOpen},
		{"overdue when unpaid past due", "0", past, false, StatusOverdue},
		{"overdue when partially paid past due", "999.99", past, false, StatusOverdue},
		{"settled when fully paid", "1000.00", future, false, StatusSettled},
		{"settled beats overdue", "1000.00", past, false, StatusSettled},
		{"cancelled beats everything", "1000.00", past, true, StatusCancelled},
		{"open on the due date itself", "0", now, false, StatusOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settled := decimal.RequireFromString(tc.settled)
			got := DeriveStatus(settled, original, tc.dueDate, now, tc.cancelled)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	settled := decimal.RequireFromString("600.00")
	original := decimal.RequireFromString("1000.00")
	due := now.AddDate(0, 0, -1)

	first := DeriveStatus(settled, original, due, now, false)
	second := DeriveStatus(settled, original, due, now, false)
	require.Equal(t, first, second)
	require.Equal(t, StatusOverdue, first)
}

func TestDocumentBalance(t *testing.T) {
	d := Document{
		OriginalAmount: decimal.RequireFromString("1000.00"),
		SettledAmount:  decimal.RequireFromString("400.00"),
	}
	require.True(t, d.Balance().Equal(decimal.RequireFromString("600.00")))
}
