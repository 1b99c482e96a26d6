package file

import (
	"context"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	store store
}

// GetAll returns every stored workflow ordered by id.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := loadAll[models.Workflow](ctx, wr.store)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetAll", "", err)
	}

	return workflows, nil
}

// GetByID retrieves a workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	if err := persistence.ValidateID(id); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow

	found, err := wr.store.read(id, &workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	if !found {
		return nil, nil
	}

	return &workflow, nil
}

// Save saves a workflow to the file system, stamping CreatedAt and UpdatedAt.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := persistence.ValidateID(workflow.ID); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if err := wr.store.write(workflow.ID, workflow); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow by its ID. Deleting an unknown id is not an error.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	if err := persistence.ValidateID(id); err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if err := wr.store.remove(id); err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

// FindActiveByTrigger returns the active workflows started by triggerType.
func (wr *WorkflowRepository) FindActiveByTrigger(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error) {
	workflows, err := wr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*models.Workflow, 0)

	for _, workflow := range workflows {
		if workflow.IsActive && workflow.Trigger.Type == triggerType {
			matches = append(matches, workflow)
		}
	}

	return matches, nil
}
