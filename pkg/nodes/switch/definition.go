package switchnode

import "github.com/dukex/classflow/pkg/models"

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Switch",
		Category:    models.CategoryLogic,
		Description: "Pick a path by matching a value against the outgoing edge handles",
		Fields: []models.FieldDefinition{
			{Name: "value", Label: "Value", Type: "text", Placeholder: "{{student.status}}", Required: true},
			{Name: "cases", Label: "Cases", Type: "list"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles(OutputPortDefault, "Default"),
		OutputVariables: []models.OutputVariable{
			{Name: "switchValue", Label: "Switch value", Description: "Value that was matched"},
			{Name: "switchMatched", Label: "Matched", Description: "False when the default path was taken"},
		},
	}
}
