// Package shared holds cross-cutting concerns used by every domain module:
// the error taxonomy, clock and actor injection, audit logging and
// idempotency keys.
package shared

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Every business failure wraps exactly one of these so callers
// can react programmatically without string matching.
var (
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates an operation forbidden by current state.
	ErrConflict = errors.New("state conflict")
	// ErrIntegrity indicates the persistence layer rejected the write.
	ErrIntegrity = errors.New("integrity violation")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted detail message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// MapDBError translates persistence errors into the shared taxonomy.
// Constraint violations (SQLSTATE class 23) become ErrIntegrity, missing rows
// become ErrNotFound, everything else passes through unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%w: %s", ErrIntegrity, pgErr.Message)
	}
	return err
}
