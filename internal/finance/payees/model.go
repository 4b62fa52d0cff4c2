// Package payees manages the counterparties referenced by ledger entries and
// settlement documents.
package payees

import "time"

// PersonType distinguishes natural persons from organizations.
type PersonType string

const (
	PersonIndividual   PersonType = "INDIVIDUAL"
	PersonOrganization PersonType = "ORGANIZATION"
)

// Valid reports whether the person type is a known value.
func (p PersonType) Valid() bool {
	return p == PersonIndividual || p == PersonOrganization
}

// Payee is a client, supplier or other counterparty.
type Payee struct {
	ID         int64
	Name       string
	PersonType PersonType
	DocumentID string
	Email      string
	Phone      string
	Note       string
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// CreateInput for registering a payee.
type CreateInput struct {
	Name       string
	PersonType PersonType
	DocumentID string
	Email      string
	Phone      string
	Note       string
	ActorLogin string
}

// UpdateInput carries mutable payee fields; nil leaves the current value.
type UpdateInput struct {
	Name       *string
	DocumentID *string
	Email      *string
	Phone      *string
	Note       *string
	ActorLogin string
}

// ListFilters narrows payee listings.
type ListFilters struct {
	Search     string
	PersonType PersonType
	ActiveOnly bool
	Limit      int
	Offset     int
}
