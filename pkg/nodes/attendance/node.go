// Package attendance provides the create-attendance node.
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const (
	NodeType = "create-attendance"

	DefaultDurationMinutes = 15
)

type Executor struct {
	attendance collaborators.Attendance
}

func NewExecutor(attendance collaborators.Attendance) *Executor {
	return &Executor{attendance: attendance}
}

// Execute opens a check-in session and exposes its code, expiry and URL.
func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.attendance == nil {
		return nodes.NotConfigured(NodeType, "attendance"), nil
	}

	classID, err := nodes.RequiredString(req.Config, "classId", req.Variables)
	if err != nil {
		return protocol.Failure(err.Error()), nil
	}

	minutes := nodes.Int(req.Config, "durationMinutes", req.Variables, DefaultDurationMinutes)
	if minutes <= 0 {
		return protocol.Failure("durationMinutes must be positive"), nil
	}

	session, err := e.attendance.CreateSession(ctx, collaborators.AttendanceRequest{ClassID: classID, DurationMinutes: minutes})
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance session: %w", err)
	}

	normalized, err := nodes.Normalize(session)
	if err != nil {
		return nil, err
	}

	return protocol.Success(map[string]any{
		"attendanceSession": normalized,
		"attendanceCode":    session.Code,
		"checkInUrl":        session.CheckInURL,
		"expiresAt":         session.ExpiresAt.UTC().Format(time.RFC3339),
	}), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Create Attendance",
		Category:    models.CategoryAction,
		Description: "Open an attendance session with a check-in code",
		Fields: []models.FieldDefinition{
			{Name: "classId", Label: "Class", Type: "select", DynamicOptions: "classes", Required: true},
			{Name: "durationMinutes", Label: "Open for (minutes)", Type: "number", DefaultValue: DefaultDurationMinutes},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "attendanceCode", Label: "Code"},
			{Name: "checkInUrl", Label: "Check-in URL"},
			{Name: "expiresAt", Label: "Expires at"},
		},
	}
}
