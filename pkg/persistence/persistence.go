// Package persistence provides the storage abstraction for workflow definitions and execution records.
package persistence

import (
	"context"

	"github.com/dukex/classflow/pkg/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions. GetByID returns nil, nil when the id is unknown.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	FindActiveByTrigger(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error)
}

// ExecutionRepository stores execution records. Save is an upsert keyed by the record id.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	List(ctx context.Context, opts ListExecutionsOptions) ([]*models.Execution, error)
}

// ListExecutionsOptions filters execution listings. Results are newest first.
type ListExecutionsOptions struct {
	WorkflowID string
	Status     models.ExecutionStatus
	Limit      int
}

// EffectiveLimit clamps Limit to (0, MaxListLimit], using DefaultListLimit when unset.
func (o ListExecutionsOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

// Matches reports whether execution passes the WorkflowID and Status filters.
func (o ListExecutionsOptions) Matches(execution *models.Execution) bool {
	if o.WorkflowID != "" && execution.WorkflowID != o.WorkflowID {
		return false
	}

	return o.Status == "" || execution.Status == o.Status
}
