package ai

import (
	"context"
	"fmt"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const (
	GradeNodeType = "ai-grade"

	DefaultMaxScore = 100
)

type GradeExecutor struct {
	ai collaborators.AI
}

func NewGradeExecutor(ai collaborators.AI) *GradeExecutor {
	return &GradeExecutor{ai: ai}
}

// Execute grades an answer against a rubric and exposes score and feedback.
func (e *GradeExecutor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.ai == nil {
		return nodes.NotConfigured(GradeNodeType, "AI"), nil
	}

	answer, err := nodes.RequiredString(req.Config, "answer", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	rubric, err := nodes.RequiredString(req.Config, "rubric", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	maxScore := nodes.Float(req.Config, "maxScore", req.Variables, DefaultMaxScore)
	if maxScore <= 0 {
		return protocol.Failure("maxScore must be positive"), nil
	}

	grade, err := e.ai.Grade(ctx, collaborators.GradeRequest{
		Question: nodes.String(req.Config, "question", req.Variables),
		Answer:   answer,
		Rubric:   rubric,
		MaxScore: maxScore,
	})
	if err != nil {
		return nil, fmt.Errorf("AI grading failed: %w", err)
	}

	return protocol.Success(map[string]any{
		"score":    grade.Score,
		"feedback": grade.Feedback,
		"maxScore": maxScore,
	}), nil
}

func (e *GradeExecutor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        GradeNodeType,
		Label:       "AI Grade",
		Category:    models.CategoryAI,
		Description: "Grade an open answer against a rubric",
		Fields: []models.FieldDefinition{
			{Name: "question", Label: "Question", Type: "textarea"},
			{Name: "answer", Label: "Answer", Type: "textarea", Placeholder: "{{submission.answer}}", Required: true},
			{Name: "rubric", Label: "Rubric", Type: "textarea", Required: true},
			{Name: "maxScore", Label: "Max score", Type: "number", DefaultValue: DefaultMaxScore},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "score", Label: "Score"},
			{Name: "feedback", Label: "Feedback"},
		},
	}
}
