// Package dispatcher starts the workflows that listen for a named domain event.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/classflow/pkg/events"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrEmptyEventName  = errors.New("event name is required")
	ErrUnexpectedEvent = errors.New("unexpected event")
)

// Runner starts a workflow run. The run itself continues in the background.
type Runner interface {
	Execute(ctx context.Context, workflowID, triggeredBy string, initial map[string]any) (*models.Execution, error)
}

type Dispatcher struct {
	workflows persistence.WorkflowRepository
	runner    Runner
	logger    *slog.Logger
}

func New(workflows persistence.WorkflowRepository, runner Runner, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		workflows: workflows,
		runner:    runner,
		logger:    logger.With("module", "event_dispatcher"),
	}
}

// TriggerWorkflowsByEvent starts one run per active workflow listening for name, with
// payload as its initial context. A workflow that fails to start is logged and skipped.
// The ids of the started executions are returned.
func (d *Dispatcher) TriggerWorkflowsByEvent(ctx context.Context, name string, payload map[string]any) ([]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyEventName
	}

	if payload == nil {
		payload = map[string]any{}
	}

	logger := d.logger.With("event_name", name)

	workflows, err := d.workflows.FindActiveByTrigger(ctx, models.TriggerEvent)
	if err != nil {
		return nil, fmt.Errorf("load event workflows: %w", err)
	}

	started := []string{}
	matched := 0

	for _, wf := range workflows {
		if wf.Trigger.EventName() != name {
			continue
		}

		matched++

		if err := validatePayload(wf.Trigger.Config.Schema, payload); err != nil {
			logger.Info("Event payload rejected by workflow schema", "workflow_id", wf.ID, "error", err)

			continue
		}

		execution, err := d.runner.Execute(ctx, wf.ID, models.TriggeredBySystem, payload)
		if err != nil {
			logger.Error("Failed to start workflow for event", "workflow_id", wf.ID, "error", err)

			continue
		}

		started = append(started, execution.ID)
	}

	logger.Info("Event dispatched", "matched", matched, "started", len(started))

	return started, nil
}

// HandleDomainEvent is the event bus handler for events.DomainEventReceived.
func (d *Dispatcher) HandleDomainEvent(ctx context.Context, event any) error {
	var received *events.DomainEventReceived

	switch e := event.(type) {
	case *events.DomainEventReceived:
		received = e
	case events.DomainEventReceived:
		received = &e
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedEvent, event)
	}

	_, err := d.TriggerWorkflowsByEvent(ctx, received.Name, received.Payload)

	return err
}

// validatePayload checks payload against an optional JSON Schema.
func validatePayload(schema map[string]any, payload map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}
