// Package log provides the logging node, which writes a templated message to the run logger.
package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const NodeType = "log"

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	message := nodes.String(req.Config, "message", req.Variables)

	level, ok := levels[strings.ToLower(nodes.String(req.Config, "level", req.Variables))]
	if !ok {
		level = slog.LevelInfo
	}

	req.Log().Log(ctx, level, message, "node_id", req.Node.ID, "node_type", NodeType)

	return protocol.Success(map[string]any{
		"logMessage": message,
	}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Log",
		Category:    models.CategoryAction,
		Description: "Write a message to the execution log",
		Fields: []models.FieldDefinition{
			{Name: "message", Label: "Message", Type: "textarea", Placeholder: "Processed {{currentItem.name}}", Required: true},
			{
				Name:  "level",
				Label: "Level",
				Type:  "select",
				Options: []models.FieldOption{
					{Label: "Debug", Value: "debug"},
					{Label: "Info", Value: "info"},
					{Label: "Warning", Value: "warn"},
					{Label: "Error", Value: "error"},
				},
				DefaultValue: "info",
			},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "logMessage", Label: "Logged message", Description: "Message after variable substitution"},
		},
	}
}
