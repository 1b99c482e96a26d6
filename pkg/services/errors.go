// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/classflow/pkg/dispatcher"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/workflow"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidWorkflow    = errors.New("invalid workflow")
	ErrInvalidStatus      = errors.New("invalid execution status")
	ErrInvalidTrigger     = errors.New("invalid trigger type")
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
	ErrUnsupportedFormat  = errors.New("unsupported workflow file format")
	ErrNoWorkflowsInFiles = errors.New("no workflow definitions found")

	// Business Logic Conflicts (409 Conflict).
	ErrExecutionFinished = errors.New("execution already finished")
	ErrWorkflowInactive  = workflow.ErrWorkflowInactive
	ErrBrokenDefinition  = workflow.ErrInvalidDefinition
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTrigger) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrNoWorkflowsInFiles) ||
		errors.Is(err, persistence.ErrInvalidID) ||
		errors.Is(err, dispatcher.ErrEmptyEventName)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrExecutionFinished) ||
		errors.Is(err, ErrWorkflowInactive) ||
		errors.Is(err, ErrBrokenDefinition)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConflictError creates a new conflict error with context.
func NewConflictError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
