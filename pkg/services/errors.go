// Package services implements the application layer between the HTTP API and
// the workflow runtime: workflow lifecycle, user registration, and run
// dispatch.
package services

import (
	"errors"
	"fmt"

	"github.com/fluxo-hq/fluxo/pkg/persistence"
)

// Errors that map to 4xx responses at the API layer. Everything else the
// services return is a 500.
var (
	ErrWorkflowNotFound  = persistence.ErrWorkflowNotFound
	ErrExecutionNotFound = persistence.ErrExecutionNotFound

	ErrWorkflowInactive  = errors.New("workflow is not active")
	ErrTriggerNotManual  = errors.New("only manual triggers can be fired through the API")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidDefinition = errors.New("invalid workflow definition")
	ErrInvalidUser       = errors.New("invalid user data")
)

// ValidationError carries the field-level detail behind ErrInvalidDefinition
// or ErrInvalidUser.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(kind error, err error) *ValidationError {
	return &ValidationError{Message: kind.Error(), Err: fmt.Errorf("%w: %w", kind, err)}
}

// IsValidationError reports whether the error should surface as HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDefinition) ||
		errors.Is(err, ErrInvalidUser) ||
		errors.Is(err, ErrTriggerNotManual)
}

// IsConflictError reports whether the error should surface as HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrWorkflowInactive)
}

// IsNotFoundError reports whether the error should surface as HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		persistence.IsUserNotFound(err)
}
