package customers

import (
	"errors"
	"fmt"
)

var (
	// ErrCustomerNotFound is returned when no customer matches an identifier
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoIdentifiers is returned when a contact yields no usable canonical identifier
	ErrNoIdentifiers = errors.New("no usable identifiers in contact")
)

// ConflictError reports two supplied identifiers resolving to two different
// existing customers. The resolver never silently picks one; the caller
// decides how to merge.
type ConflictError struct {
	FirstID    string
	SecondID   string
	FirstKind  string
	SecondKind string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("identifier conflict: %s matches customer %s but %s matches customer %s",
		e.FirstKind, e.FirstID, e.SecondKind, e.SecondID)
}

// IsConflict reports whether err is an identifier conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
