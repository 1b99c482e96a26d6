// Package trigger provides the start nodes of a workflow. They pass the run through
// unchanged, exposing when and by whom it was started.
package trigger

import (
	"context"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/protocol"
)

const (
	ManualNodeType   = "manual-trigger"
	ScheduleNodeType = "schedule-trigger"
	EventNodeType    = "event-trigger"

	OutputPortMain = "output"
)

// Executor is shared by the three trigger node types.
type Executor struct {
	nodeType string
	now      func() time.Time
}

func NewManual() *Executor { return &Executor{nodeType: ManualNodeType, now: time.Now} }
func NewSchedule() *Executor { return &Executor{nodeType: ScheduleNodeType, now: time.Now} }
func NewEvent() *Executor { return &Executor{nodeType: EventNodeType, now: time.Now} }

func (e *Executor) Execute(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	output := map[string]any{
		"triggeredAt": e.now().UTC().Format(time.RFC3339),
	}

	if req.Execution != nil {
		output["triggeredBy"] = req.Execution.TriggeredBy
	}

	if e.nodeType == EventNodeType && req.Workflow != nil {
		if name := req.Workflow.Trigger.EventName(); name != "" {
			output["eventName"] = name
		}
	}

	return protocol.Success(output), nil
}

func (e *Executor) Definition() models.NodeDefinition {
	def := models.NodeDefinition{
		Type:     e.nodeType,
		Category: models.CategoryTrigger,
		Inputs:   []models.HandleDefinition{},
		Outputs:  models.OutputHandles(OutputPortMain, "Start"),
		OutputVariables: []models.OutputVariable{
			{Name: "triggeredAt", Label: "Triggered at", Description: "RFC 3339 timestamp of the start"},
			{Name: "triggeredBy", Label: "Triggered by", Description: "manual, scheduler, system or a user id"},
		},
	}

	switch e.nodeType {
	case ManualNodeType:
		def.Label = "Manual Trigger"
		def.Description = "Start the workflow from the dashboard"
	case ScheduleNodeType:
		def.Label = "Schedule"
		def.Description = "Start the workflow on a cron schedule"
		def.Fields = []models.FieldDefinition{
			{Name: "cron", Label: "Cron expression", Type: "text", Placeholder: "0 8 * * 1-5", Required: true},
			{Name: "timezone", Label: "Timezone", Type: "text", Placeholder: "America/Sao_Paulo"},
		}
	case EventNodeType:
		def.Label = "Event"
		def.Description = "Start the workflow when a school event happens"
		def.Fields = []models.FieldDefinition{
			{
				Name:  "event",
				Label: "Event",
				Type:  "select",
				Options: []models.FieldOption{
					{Label: "Exam submitted", Value: "EXAM_SUBMITTED"},
					{Label: "Student enrolled", Value: "STUDENT_ENROLLED"},
					{Label: "Attendance marked", Value: "ATTENDANCE_MARKED"},
					{Label: "Form submitted", Value: "FORM_SUBMITTED"},
				},
				Required: true,
			},
		}
		def.OutputVariables = append(def.OutputVariables, models.OutputVariable{
			Name: "eventName", Label: "Event name", Description: "Name of the event that started the run",
		})
	}

	return def
}
