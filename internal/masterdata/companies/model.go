// Package companies manages the legal entities documents are issued under.
package companies

import "time"

// Company is one legal entity of the business.
type Company struct {
	ID         int64
	Name       string
	TradeName  string
	DocumentID string
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// CreateInput for registering a company.
type CreateInput struct {
	Name       string
	TradeName  string
	DocumentID string
	ActorLogin string
}

// UpdateInput carries mutable company fields; nil leaves the current value.
type UpdateInput struct {
	Name       *string
	TradeName  *string
	DocumentID *string
	Active     *bool
	ActorLogin string
}
