package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
)

// Engine is the part of the workflow executor the service drives.
type Engine interface {
	Execute(ctx context.Context, workflowID, triggeredBy string, initial map[string]any) (*models.Execution, error)
	Cancel(executionID string) bool
}

type Execution struct {
	persistence persistence.Persistence
	engine      Engine
	now         func() time.Time
}

// NewExecution creates a new execution service.
func NewExecution(persistence persistence.Persistence, engine Engine) *Execution {
	return &Execution{
		persistence: persistence,
		engine:      engine,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ExecuteRequest is the body of a run request.
type ExecuteRequest struct {
	TriggeredBy string         `json:"triggeredBy" validate:"omitempty,max=200"`
	Context     map[string]any `json:"context"`
}

// Execute starts a run of workflowID and returns the running record.
func (s *Execution) Execute(ctx context.Context, workflowID string, req ExecuteRequest) (*models.Execution, error) {
	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = models.TriggeredByManual
	}

	return s.engine.Execute(ctx, workflowID, triggeredBy, req.Context)
}

// ListExecutionsRequest contains options for listing execution records.
type ListExecutionsRequest struct {
	WorkflowID string
	Status     models.ExecutionStatus
	Limit      int
}

// ListExecutions returns execution records, newest first.
func (s *Execution) ListExecutions(ctx context.Context, req ListExecutionsRequest) ([]*models.Execution, error) {
	switch req.Status {
	case "", models.ExecutionPending, models.ExecutionRunning, models.ExecutionCompleted, models.ExecutionFailed, models.ExecutionCancelled:
	default:
		return nil, NewValidationError("ListExecutions", "invalid_status", "unknown status "+string(req.Status), ErrInvalidStatus)
	}

	if req.Limit < 0 {
		return nil, NewValidationError("ListExecutions", "invalid_limit", "limit must not be negative", ErrInvalidRequest)
	}

	executions, err := s.persistence.ExecutionRepository().List(ctx, persistence.ListExecutionsOptions{
		WorkflowID: req.WorkflowID,
		Status:     req.Status,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// FetchByID retrieves an execution record by its ID.
func (s *Execution) FetchByID(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution == nil {
		return nil, persistence.NewExecutionError("FetchByID", id, persistence.ErrExecutionNotFound)
	}

	return execution, nil
}

// Cancel stops a run. A run walking in this process is signalled and stops before its
// next node; any other unfinished record is marked cancelled directly. Finished records
// cannot be cancelled.
func (s *Execution) Cancel(ctx context.Context, id string) (*models.Execution, error) {
	execution, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status.IsTerminal() {
		return nil, NewConflictError("Cancel", "execution_finished",
			fmt.Sprintf("execution %s is already %s", id, execution.Status), ErrExecutionFinished)
	}

	if s.engine.Cancel(id) {
		execution.Status = models.ExecutionCancelled

		return execution, nil
	}

	completedAt := s.now()
	execution.Status = models.ExecutionCancelled
	execution.CompletedAt = &completedAt

	if err := s.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to cancel execution: %w", err)
	}

	return execution, nil
}
