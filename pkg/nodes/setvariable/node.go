// Package setvariable provides a node that writes values into the execution context.
package setvariable

import (
	"context"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
)

const NodeType = "set-variable"

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Execute sets "name" to "value", and/or every entry of "variables". Values are templated,
// so "{{exam.questions}}" copies the list itself.
func (e *Executor) Execute(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	output := make(map[string]any)

	if name := nodes.String(req.Config, "name", req.Variables); name != "" {
		output[name] = nodes.Value(req.Config, "value", req.Variables)
	}

	for key, value := range nodes.Map(req.Config, "variables", req.Variables) {
		if key = strings.TrimSpace(key); key != "" {
			output[key] = template.Resolve(value, req.Variables)
		}
	}

	if len(output) == 0 {
		return protocol.Failure("set-variable needs a name or a variables map"), nil
	}

	return protocol.Success(output), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Set Variable",
		Category:    models.CategoryLogic,
		Description: "Store a value for later steps",
		Fields: []models.FieldDefinition{
			{Name: "name", Label: "Variable name", Type: "text", Placeholder: "passingScore"},
			{Name: "value", Label: "Value", Type: "text", Placeholder: "70"},
			{Name: "variables", Label: "Several variables", Type: "json"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
	}
}
