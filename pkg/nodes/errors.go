// Package nodes defines the shared contract for workflow node implementations.
package nodes

import (
	"errors"
	"fmt"
)

// ExecutionError is raised when a node fails during parameter validation or
// execution. The engine contains it: the description is recorded on the run
// context and the failing node's successors are pruned, but the run goes on.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// Errorf builds an ExecutionError from a format string.
func Errorf(format string, args ...any) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...)}
}

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var executionErr *ExecutionError

	return errors.As(err, &executionErr)
}
