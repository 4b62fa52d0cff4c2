// Package banks holds the national bank registry referenced by bank accounts.
package banks

// Bank is one institution from the clearing registry.
type Bank struct {
	ID   int64
	Code string
	Name string
}
