// Package shared holds helpers common to the masterdata packages.
package shared

// ListFilters is the common listing contract for masterdata entities.
type ListFilters struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
