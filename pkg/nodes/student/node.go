// Package student provides the fetch-students and update-student nodes.
package student

import (
	"context"
	"fmt"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
)

const (
	FetchNodeType  = "fetch-students"
	UpdateNodeType = "update-student"
)

type FetchExecutor struct {
	students collaborators.Students
}

func NewFetchExecutor(students collaborators.Students) *FetchExecutor {
	return &FetchExecutor{students: students}
}

// Execute stores the matching students under "students", ready for a loop node.
func (e *FetchExecutor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.students == nil {
		return nodes.NotConfigured(FetchNodeType, "student"), nil
	}

	filter := collaborators.StudentFilter{
		ClassID: nodes.String(req.Config, "classId", req.Variables),
		Status:  nodes.String(req.Config, "status", req.Variables),
	}

	found, err := e.students.FetchStudents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}

	students, err := nodes.Normalize(found)
	if err != nil {
		return nil, err
	}

	if students == nil {
		students = []any{}
	}

	return protocol.Success(map[string]any{"students": students, "studentCount": len(found)}), nil
}

func (e *FetchExecutor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        FetchNodeType,
		Label:       "Fetch Students",
		Category:    models.CategoryAction,
		Description: "Load the students of a class",
		Fields: []models.FieldDefinition{
			{Name: "classId", Label: "Class", Type: "select", DynamicOptions: "classes"},
			{
				Name:  "status",
				Label: "Status",
				Type:  "select",
				Options: []models.FieldOption{
					{Label: "Any", Value: ""},
					{Label: "Active", Value: "active"},
					{Label: "At risk", Value: "at-risk"},
					{Label: "Inactive", Value: "inactive"},
				},
			},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "students", Label: "Students", Description: "List of students"},
			{Name: "studentCount", Label: "Count"},
		},
	}
}

type UpdateExecutor struct {
	students collaborators.Students
}

func NewUpdateExecutor(students collaborators.Students) *UpdateExecutor {
	return &UpdateExecutor{students: students}
}

// Execute patches one student. Every entry of "fields" is templated.
func (e *UpdateExecutor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.students == nil {
		return nodes.NotConfigured(UpdateNodeType, "student"), nil
	}

	id, err := nodes.RequiredString(req.Config, "studentId", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	fields := make(map[string]any)
	for key, value := range nodes.Map(req.Config, "fields", req.Variables) {
		fields[key] = template.Resolve(value, req.Variables)
	}

	if len(fields) == 0 {
		return protocol.Failure("fields: nothing to update"), nil
	}

	updated, err := e.students.UpdateStudent(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update student %s: %w", id, err)
	}

	student, err := nodes.Normalize(updated)
	if err != nil {
		return nil, err
	}

	return protocol.Success(map[string]any{"student": student, "studentId": id}), nil
}

func (e *UpdateExecutor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        UpdateNodeType,
		Label:       "Update Student",
		Category:    models.CategoryAction,
		Description: "Change fields on a student record",
		Fields: []models.FieldDefinition{
			{Name: "studentId", Label: "Student", Type: "text", Placeholder: "{{currentItem.id}}", Required: true},
			{Name: "fields", Label: "Fields", Type: "json", Placeholder: `{"status": "at-risk"}`, Required: true},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "student", Label: "Student", Description: "The updated record"},
		},
	}
}
