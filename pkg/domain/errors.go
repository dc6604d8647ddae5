package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or constraint-violating input rejected
// before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown entity. Operator mismatches are reported
// as not-found rather than leaking record existence.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// InvariantViolation reports an operation that would break a standing
// invariant of the ledger.
type InvariantViolation struct {
	Entity EntityType
	ID     string
	Reason string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation on %s %q: %s", e.Entity, e.ID, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsInvariantViolation reports whether err is (or wraps) an InvariantViolation.
func IsInvariantViolation(err error) bool {
	var iv InvariantViolation
	return errors.As(err, &iv)
}
