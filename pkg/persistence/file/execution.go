package file

import (
	"context"
	"sort"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
)

// ExecutionRepository handles execution record file operations.
type ExecutionRepository struct {
	store store
}

// Save writes the whole record, replacing any previous version.
func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	if err := persistence.ValidateID(execution.ID); err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	if err := er.store.write(execution.ID, execution); err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	if err := persistence.ValidateID(id); err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	var execution models.Execution

	found, err := er.store.read(id, &execution)
	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	if !found {
		return nil, nil
	}

	return &execution, nil
}

// List returns the newest records first, filtered and limited by opts.
func (er *ExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) ([]*models.Execution, error) {
	executions, err := loadAll[models.Execution](ctx, er.store)
	if err != nil {
		return nil, persistence.NewExecutionError("List", "", err)
	}

	filtered := make([]*models.Execution, 0, len(executions))

	for _, execution := range executions {
		if opts.Matches(execution) {
			filtered = append(filtered, execution)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})

	if limit := opts.EffectiveLimit(); len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, nil
}
