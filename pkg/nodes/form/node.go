// Package form provides the create-form node.
package form

import (
	"context"
	"fmt"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const NodeType = "create-form"

type Executor struct {
	forms collaborators.Forms
}

func NewExecutor(forms collaborators.Forms) *Executor {
	return &Executor{forms: forms}
}

func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.forms == nil {
		return nodes.NotConfigured(NodeType, "form"), nil
	}

	title, err := nodes.RequiredString(req.Config, "title", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	fields := nodes.Maps(req.Config, "fields", req.Variables)
	if fields == nil {
		fields = []map[string]any{}
	}

	created, err := e.forms.CreateForm(ctx, collaborators.FormRequest{
		Title:       title,
		Description: nodes.String(req.Config, "description", req.Variables),
		Fields:      fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	form, err := nodes.Normalize(created)
	if err != nil {
		return nil, err
	}

	return protocol.Success(map[string]any{"form": form, "formId": created.ID, "formUrl": created.URL}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Create Form",
		Category:    models.CategoryAction,
		Description: "Publish a form or survey",
		Fields: []models.FieldDefinition{
			{Name: "title", Label: "Title", Type: "text", Required: true},
			{Name: "description", Label: "Description", Type: "textarea"},
			{Name: "fields", Label: "Fields", Type: "json", Placeholder: `[{"name": "rating", "type": "number"}]`},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "formId", Label: "Form id"},
			{Name: "formUrl", Label: "Form URL", Description: "Link to share with respondents"},
		},
	}
}
