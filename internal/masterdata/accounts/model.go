// Package accounts manages the bank accounts money moves through.
package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a bank account.
type AccountType string

const (
	TypeChecking AccountType = "CHECKING"
	TypeSavings  AccountType = "SAVINGS"
	TypeCash     AccountType = "CASH"
)

// Valid reports whether the account type is a known value.
func (t AccountType) Valid() bool {
	switch t {
	case TypeChecking, TypeSavings, TypeCash:
		return true
	}
	return false
}

// Account is one bank account owned by a company. At most one account per
// company carries the default flag.
type Account struct {
	ID             int64
	CompanyID      int64
	BankID         *int64
	Agency         string
	Number         string
	Type           AccountType
	Description    string
	OpeningBalance decimal.Decimal
	Default        bool
	Active         bool
	CreatedBy      string
	CreatedAt      time.Time
	ModifiedBy     string
	ModifiedAt     time.Time
}

// CreateInput for registering an account.
type CreateInput struct {
	CompanyID      int64
	BankID         *int64
	Agency         string
	Number         string
	Type           AccountType
	Description    string
	OpeningBalance decimal.Decimal
	Default        bool
	ActorLogin     string
}

// UpdateInput carries mutable account fields; nil leaves the current value.
type UpdateInput struct {
	Agency      *string
	Number      *string
	Description *string
	Active      *bool
	ActorLogin  string
}
