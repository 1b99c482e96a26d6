package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/scheduler"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

type Workflow struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows. Zero values do not filter.
type ListWorkflowsRequest struct {
	Active   *bool
	Trigger  models.TriggerType
	Category string
}

// ListWorkflows returns the matching workflows ordered by name.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) ([]*models.Workflow, error) {
	switch req.Trigger {
	case "", models.TriggerManual, models.TriggerSchedule, models.TriggerEvent:
	default:
		return nil, NewValidationError("ListWorkflows", "invalid_trigger", "unknown trigger type "+string(req.Trigger), ErrInvalidTrigger)
	}

	all, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(all))

	for _, wf := range all {
		if req.Active != nil && wf.IsActive != *req.Active {
			continue
		}

		if req.Trigger != "" && triggerType(wf) != req.Trigger {
			continue
		}

		if req.Category != "" && !strings.EqualFold(wf.Category, req.Category) {
			continue
		}

		workflows = append(workflows, wf)
	}

	slices.SortStableFunc(workflows, func(a, b *models.Workflow) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	wf, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wf == nil {
		return nil, persistence.NewWorkflowError("FetchByID", id, ErrWorkflowNotFound)
	}

	return wf, nil
}

// Save validates workflow and creates or replaces it. A missing id is generated.
func (w *Workflow) Save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	if err := w.Validate(workflow); err != nil {
		return nil, err
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		workflow.CreatedAt = existing.CreatedAt
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	if _, err := w.FetchByID(ctx, workflowID); err != nil {
		return err
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Validate checks field constraints, graph structure and the trigger configuration.
func (w *Workflow) Validate(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if err := w.validate.Struct(workflow); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return NewValidationError("Validate", "invalid_fields", describe(fieldErrs), ErrInvalidWorkflow)
		}

		return NewValidationError("Validate", "invalid_fields", err.Error(), ErrInvalidWorkflow)
	}

	if err := workflow.Validate(); err != nil {
		return NewValidationError("Validate", "invalid_graph", err.Error(), ErrInvalidWorkflow)
	}

	if workflow.Trigger.Type == models.TriggerSchedule {
		if err := scheduler.Validate(workflow.Trigger); err != nil {
			return NewValidationError("Validate", "invalid_schedule", err.Error(), ErrInvalidWorkflow)
		}
	}

	return nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}

func triggerType(wf *models.Workflow) models.TriggerType {
	if wf.Trigger.Type == "" {
		return models.TriggerManual
	}

	return wf.Trigger.Type
}
