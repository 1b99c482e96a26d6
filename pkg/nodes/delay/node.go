// Package delay provides a node that pauses the run for a fixed duration.
package delay

import (
	"context"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const (
	NodeType = "delay"

	maxDelay = 24 * time.Hour
)

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Execute waits for "duration" (a Go duration or milliseconds). Cancellation of ctx interrupts the wait.
func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	d, err := nodes.Duration(req.Config, "duration", req.Variables, 0)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	if d < 0 || d > maxDelay {
		return protocol.Failure("duration must be between 0 and 24h"), nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return protocol.Success(map[string]any{"delayedMs": d.Milliseconds()}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Delay",
		Category:    models.CategoryLogic,
		Description: "Wait before continuing",
		Fields: []models.FieldDefinition{
			{Name: "duration", Label: "Duration", Type: "text", Placeholder: "10m", DefaultValue: "1s"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
	}
}
