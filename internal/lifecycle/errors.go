// internal/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"fmt"
)

// Recoverable errors are returned as typed sentinels so handlers can render
// them as user-facing outcomes. Storage failures are wrapped in
// PersistenceError and propagate to the top-level error boundary.
var (
	ErrNotFound               = errors.New("application not found")
	ErrForbidden              = errors.New("not allowed to access this application")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflictAssignment     = errors.New("project was assigned to another candidate")
	ErrDuplicateApplication   = errors.New("an application for this project already exists")
	ErrProjectNotOpen         = errors.New("project is not open for applications")
	ErrValidation             = errors.New("validation failed")
)

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
