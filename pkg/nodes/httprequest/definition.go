package httprequest

import "github.com/dukex/classflow/pkg/models"

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "HTTP Request",
		Category:    models.CategoryAction,
		Description: "Call an external HTTP endpoint",
		Fields: []models.FieldDefinition{
			{Name: "url", Label: "URL", Type: "text", Placeholder: "https://api.example.com/grades/{{studentId}}", Required: true},
			{
				Name:  "method",
				Label: "Method",
				Type:  "select",
				Options: []models.FieldOption{
					{Label: "GET", Value: "GET"},
					{Label: "POST", Value: "POST"},
					{Label: "PUT", Value: "PUT"},
					{Label: "PATCH", Value: "PATCH"},
					{Label: "DELETE", Value: "DELETE"},
				},
				DefaultValue: "GET",
			},
			{Name: "headers", Label: "Headers", Type: "json"},
			{Name: "body", Label: "Body", Type: "json"},
			{Name: "timeout", Label: "Timeout", Type: "text", DefaultValue: "30s"},
			{Name: "retries", Label: "Retries", Type: "number"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "httpStatus", Label: "Status code", Description: "HTTP status of the response"},
			{Name: "httpResponse", Label: "Response", Description: "Decoded JSON body, or the raw body"},
		},
	}
}
