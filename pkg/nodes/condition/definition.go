package condition

import "github.com/dukex/classflow/pkg/models"

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Condition",
		Category:    models.CategoryLogic,
		Description: "Continue on the true or false branch depending on an expression",
		Fields: []models.FieldDefinition{
			{
				Name:        "condition",
				Label:       "Condition",
				Type:        "text",
				Placeholder: "score > 50",
				Required:    true,
			},
			{Name: "trueLabel", Label: "True handle", Type: "text", DefaultValue: OutputPortTrue},
			{Name: "falseLabel", Label: "False handle", Type: "text", DefaultValue: OutputPortFalse},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles(OutputPortTrue, "True", OutputPortFalse, "False"),
		OutputVariables: []models.OutputVariable{
			{Name: "conditionResult", Label: "Condition result", Description: "Boolean outcome of the last evaluated condition"},
		},
	}
}
