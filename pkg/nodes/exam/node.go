// Package exam provides the create-exam node.
package exam

import (
	"context"
	"fmt"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const (
	NodeType = "create-exam"

	DefaultDifficulty    = "medium"
	DefaultQuestionCount = 10
)

type Executor struct {
	exams collaborators.Exams
}

func NewExecutor(exams collaborators.Exams) *Executor {
	return &Executor{exams: exams}
}

func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.exams == nil {
		return nodes.NotConfigured(NodeType, "exam"), nil
	}

	topic, err := nodes.RequiredString(req.Config, "topic", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	criteria := collaborators.ExamCriteria{
		Title:         nodes.String(req.Config, "title", req.Variables),
		ClassID:       nodes.String(req.Config, "classId", req.Variables),
		Topic:         topic,
		Difficulty:    nodes.String(req.Config, "difficulty", req.Variables),
		QuestionCount: nodes.Int(req.Config, "questionCount", req.Variables, DefaultQuestionCount),
	}

	if criteria.Title == "" {
		criteria.Title = topic
	}

	if criteria.Difficulty == "" {
		criteria.Difficulty = DefaultDifficulty
	}

	if criteria.QuestionCount <= 0 {
		return protocol.Failure("questionCount must be positive"), nil
	}

	created, err := e.exams.CreateExam(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	exam, err := nodes.Normalize(created)
	if err != nil {
		return nil, err
	}

	return protocol.Success(map[string]any{"exam": exam, "examId": created.ID}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Create Exam",
		Category:    models.CategoryAction,
		Description: "Assemble an exam from the question bank",
		Fields: []models.FieldDefinition{
			{Name: "title", Label: "Title", Type: "text"},
			{Name: "classId", Label: "Class", Type: "select", DynamicOptions: "classes"},
			{Name: "topic", Label: "Topic", Type: "text", Required: true},
			{
				Name:  "difficulty",
				Label: "Difficulty",
				Type:  "select",
				Options: []models.FieldOption{
					{Label: "Easy", Value: "easy"},
					{Label: "Medium", Value: "medium"},
					{Label: "Hard", Value: "hard"},
				},
				DefaultValue: DefaultDifficulty,
			},
			{Name: "questionCount", Label: "Questions", Type: "number", DefaultValue: DefaultQuestionCount},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "exam", Label: "Exam", Description: "The created exam with its questions"},
			{Name: "examId", Label: "Exam id"},
		},
	}
}
