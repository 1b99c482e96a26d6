// Package ai provides the nodes backed by the external AI service.
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
	GenerateNodeType = "ai-generate"

	DefaultOutputKey = "aiResponse"
	DefaultMaxTokens = 1000
)

type GenerateExecutor struct {
	ai collaborators.AI
}

func NewGenerateExecutor(ai collaborators.AI) *GenerateExecutor {
	return &GenerateExecutor{ai: ai}
}

// Execute sends the templated prompt and stores the text under outputKey.
func (e *GenerateExecutor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.ai == nil {
		return nodes.NotConfigured(GenerateNodeType, "AI"), nil
	}

	prompt, err := nodes.RequiredString(req.Config, "prompt", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	outputKey := nodes.String(req.Config, "outputKey", req.Variables)
	if outputKey == "" {
		outputKey = DefaultOutputKey
	}

	generation, err := e.ai.Generate(ctx, collaborators.GenerateRequest{
		Prompt:      prompt,
		System:      nodes.String(req.Config, "systemPrompt", req.Variables),
		Model:       nodes.String(req.Config, "model", req.Variables),
		MaxTokens:   nodes.Int(req.Config, "maxTokens", req.Variables, DefaultMaxTokens),
		Temperature: nodes.Float(req.Config, "temperature", req.Variables, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	req.Log().Debug("AI text generated", "tokens", generation.Tokens, "output_key", outputKey)

	return protocol.Success(map[string]any{
		outputKey:    generation.Text,
		"tokensUsed": generation.Tokens,
	}), nil
}

func (e *GenerateExecutor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        GenerateNodeType,
		Label:       "AI Generate",
		Category:    models.CategoryAI,
		Description: "Generate text such as questions, summaries or messages",
		Fields: []models.FieldDefinition{
			{Name: "prompt", Label: "Prompt", Type: "textarea", Placeholder: "Write 3 questions about {{topic}}", Required: true},
			{Name: "systemPrompt", Label: "System prompt", Type: "textarea"},
			{Name: "model", Label: "Model", Type: "text"},
			{Name: "maxTokens", Label: "Max tokens", Type: "number", DefaultValue: DefaultMaxTokens},
			{Name: "temperature", Label: "Temperature", Type: "number"},
			{Name: "outputKey", Label: "Save result as", Type: "text", DefaultValue: DefaultOutputKey},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: DefaultOutputKey, Label: "Response", Description: "Generated text, stored under the chosen key"},
			{Name: "tokensUsed", Label: "Tokens used"},
		},
	}
}
