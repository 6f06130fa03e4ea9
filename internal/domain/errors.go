package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("item not found")

// ErrConsistency means an item could still be read back after its delete was
// acknowledged.
var ErrConsistency = errors.New("CONSISTENCY: item still exists after deletion")

// ErrNothingDeleted is returned when the delete call affected no rows. The
// collection does not say whether the row was already gone or the caller lacks
// permission.
var ErrNothingDeleted = errors.New("no rows were deleted - check permissions or item existence")

// ValidationError lists every rule a candidate violated.
type ValidationError struct {
	Errors []string
}

func NewValidationError(errs ...string) *ValidationError {
	return &ValidationError{Errors: errs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, ", ")
}

// TransportError wraps a failed call to the item collection or the image host.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to %s: HTTP %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
