package loop

import "github.com/dukex/classflow/pkg/models"

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Loop",
		Category:    models.CategoryLogic,
		Description: "Run the connected steps once for every item of a list",
		Fields: []models.FieldDefinition{
			{
				Name:           "items",
				Label:          "Items",
				Type:           "variable",
				DynamicOptions: "variables",
				Placeholder:    "students",
				Required:       true,
			},
			{Name: "currentItemKey", Label: "Current item variable", Type: "text", DefaultValue: DefaultCurrentItemKey},
		},
		Inputs: []models.HandleDefinition{
			{ID: "input", Type: "target", Label: "Input"},
			{ID: "loopBack", Type: "target", Label: "Next item"},
		},
		Outputs: models.OutputHandles(OutputPortItem, "Each item", OutputPortCompleted, "Completed"),
		OutputVariables: []models.OutputVariable{
			{Name: DefaultCurrentItemKey, Label: "Current item", Description: "Item of the current iteration"},
			{Name: "loopIndex", Label: "Index", Description: "Zero based index of the current item"},
			{Name: "loopFinished", Label: "Finished", Description: "True once every item has been processed"},
		},
	}
}
