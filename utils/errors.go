// utils/errors.go - Error taxonomy for the compliance core
package utils

import (
	"errors"
	"fmt"
	"log"
)

// Sentinel errors. Nothing in the compliance core is fatal to the
// process; every failure degrades to "show the old data, tell the
// user it didn't save".
var (
	// ErrValidation marks rejected input. Empty catalog names are
	// silently ignored instead and never carry this error.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a mutation whose target vanished; callers
	// treat it as a no-op, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an illegal state transition, such as marking
	// a cell not-applicable while it still holds files.
	ErrConflict = errors.New("conflict")

	// ErrTransientIO marks a failed entity-store or file-storage
	// call. State stays at its last-known-good fetch.
	ErrTransientIO = errors.New("transient io error")
)

// ValidationError wraps a message as a rejected-input error.
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// TransientError wraps an upstream failure so handlers can map it to
// a retryable response.
func TransientError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransientIO, op, err)
}

// LogInvariantViolation reports a broken data invariant, such as two
// records sharing a composite key. The store cannot enforce these
// invariants, so detection has to be loud.
func LogInvariantViolation(format string, args ...interface{}) {
	log.Printf("INVARIANT VIOLATION: "+format, args...)
}
