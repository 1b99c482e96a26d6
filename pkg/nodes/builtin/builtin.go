// Package builtin registers every node executor shipped with classflow.
package builtin

import (
	"net/http"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/nodes/ai"
	"github.com/dukex/classflow/pkg/nodes/attendance"
	"github.com/dukex/classflow/pkg/nodes/condition"
	"github.com/dukex/classflow/pkg/nodes/delay"
	"github.com/dukex/classflow/pkg/nodes/email"
	"github.com/dukex/classflow/pkg/nodes/exam"
	"github.com/dukex/classflow/pkg/nodes/form"
	"github.com/dukex/classflow/pkg/nodes/httprequest"
	lognode "github.com/dukex/classflow/pkg/nodes/log"
	"github.com/dukex/classflow/pkg/nodes/loop"
	"github.com/dukex/classflow/pkg/nodes/report"
	"github.com/dukex/classflow/pkg/nodes/setvariable"
	"github.com/dukex/classflow/pkg/nodes/student"
	switchnode "github.com/dukex/classflow/pkg/nodes/switch"
	"github.com/dukex/classflow/pkg/nodes/trigger"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/registry"
)

// Executors returns the built-in executors keyed by node type.
func Executors(services collaborators.Services, httpClient *http.Client) map[string]protocol.NodeExecutor {
	return map[string]protocol.NodeExecutor{
		trigger.ManualNodeType:   trigger.NewManual(),
		trigger.ScheduleNodeType: trigger.NewSchedule(),
		trigger.EventNodeType:    trigger.NewEvent(),

		condition.NodeType:   condition.NewExecutor(),
		loop.NodeType:        loop.NewExecutor(),
		switchnode.NodeType:  switchnode.NewExecutor(),
		delay.NodeType:       delay.NewExecutor(),
		setvariable.NodeType: setvariable.NewExecutor(),
		lognode.NodeType:     lognode.NewExecutor(),
		httprequest.NodeType: httprequest.NewExecutor(httpClient),

		email.NodeType:          email.NewExecutor(services.Mailer),
		exam.NodeType:           exam.NewExecutor(services.Exams),
		student.FetchNodeType:   student.NewFetchExecutor(services.Students),
		student.UpdateNodeType:  student.NewUpdateExecutor(services.Students),
		attendance.NodeType:     attendance.NewExecutor(services.Attendance),
		form.NodeType:           form.NewExecutor(services.Forms),
		report.NodeType:         report.NewExecutor(services.Reports),
		ai.GenerateNodeType:     ai.NewGenerateExecutor(services.AI),
		ai.GradeNodeType:        ai.NewGradeExecutor(services.AI),
	}
}

// order keeps the editor palette stable: triggers first, then logic, then actions.
var order = []string{
	trigger.ManualNodeType, trigger.ScheduleNodeType, trigger.EventNodeType,
	condition.NodeType, loop.NodeType, switchnode.NodeType, delay.NodeType, setvariable.NodeType, lognode.NodeType,
	email.NodeType, exam.NodeType, student.FetchNodeType, student.UpdateNodeType,
	attendance.NodeType, form.NodeType, report.NodeType, httprequest.NodeType,
	ai.GenerateNodeType, ai.GradeNodeType,
}

// Register adds every built-in executor to reg.
func Register(reg *registry.Registry, services collaborators.Services, httpClient *http.Client) error {
	executors := Executors(services, httpClient)

	for _, nodeType := range order {
		if err := reg.Register(nodeType, executors[nodeType]); err != nil {
			return err
		}
	}

	return nil
}
