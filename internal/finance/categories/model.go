// Package categories maintains the hierarchical classification tree used by
// ledger entries and settlement documents. Categories are never hard-deleted;
// deactivation hides them from new postings while history keeps pointing at
// them.
package categories

import "time"

// Kind classifies what a category counts: money in, money out, or a
// transfer between accounts.
type Kind string

const (
	KindRevenue  Kind = "REVENUE"
	KindExpense  Kind = "EXPENSE"
	KindTransfer Kind = "TRANSFER"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindRevenue, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Category is one node of the classification tree.
type Category struct {
	ID         int64
	Name       string
	Kind       Kind
	ParentID   *int64
	Active     bool
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// CreateInput for adding a category.
type CreateInput struct {
	Name       string
	Kind       Kind
	ParentID   *int64
	ActorLogin string
}

// UpdateInput renames a category; nil fields are left untouched.
type UpdateInput struct {
	Name       *string
	ActorLogin string
}

// ListFilters narrows category listings.
type ListFilters struct {
	Kind       Kind
	ParentID   *int64
	ActiveOnly bool
	Search     string
}

// TreeNode is a category with its children resolved, for tree listings.
type TreeNode struct {
	Category
	Children []*TreeNode
}
