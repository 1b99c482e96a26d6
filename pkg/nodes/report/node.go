// Package report provides the generate-report node.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
)

const NodeType = "generate-report"

type Executor struct {
	reports collaborators.Reports
}

func NewExecutor(reports collaborators.Reports) *Executor {
	return &Executor{reports: reports}
}

func (e *Executor) Execute(ctx context.Context, req protocol.Request) (*protocol.Result, error) {
	if e.reports == nil {
		return nodes.NotConfigured(NodeType, "report"), nil
	}

	reportType := collaborators.ReportType(nodes.String(req.Config, "reportType", req.Variables))
	if !reportType.Valid() {
		return protocol.Failure(fmt.Sprintf("reportType must be one of %s", validTypes())), nil
	}

	request := collaborators.ReportRequest{
		Type:      reportType,
		ClassID:   nodes.String(req.Config, "classId", req.Variables),
		StudentID: nodes.String(req.Config, "studentId", req.Variables),
		ExamID:    nodes.String(req.Config, "examId", req.Variables),
		From:      nodes.String(req.Config, "from", req.Variables),
		To:        nodes.String(req.Config, "to", req.Variables),
	}

	if reportType == collaborators.ReportStudentProgress && request.StudentID == "" {
		return protocol.Failure("studentId is required for student-progress reports"), nil
	}

	if reportType == collaborators.ReportExamResults && request.ExamID == "" {
		return protocol.Failure("examId is required for exam-results reports"), nil
	}

	generated, err := e.reports.GenerateReport(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s report: %w", reportType, err)
	}

	report, err := nodes.Normalize(generated)
	if err != nil {
		return nil, err
	}

	return protocol.Success(map[string]any{"report": report, "reportId": generated.ID}), nil
}

func validTypes() string {
	names := make([]string, len(collaborators.ReportTypes))
	for i, t := range collaborators.ReportTypes {
		names[i] = string(t)
	}

	return strings.Join(names, ", ")
}

func (e *Executor) Definition() models.NodeDefinition {
	options := make([]models.FieldOption, len(collaborators.ReportTypes))
	for i, t := range collaborators.ReportTypes {
		options[i] = models.FieldOption{Label: string(t), Value: string(t)}
	}

	return models.NodeDefinition{
		Type:        NodeType,
		Label:       "Generate Report",
		Category:    models.CategoryAction,
		Description: "Build an attendance, exam, class or student report",
		Fields: []models.FieldDefinition{
			{Name: "reportType", Label: "Report", Type: "select", Options: options, DefaultValue: string(collaborators.ReportAttendance), Required: true},
			{Name: "classId", Label: "Class", Type: "select", DynamicOptions: "classes"},
			{Name: "studentId", Label: "Student", Type: "text"},
			{Name: "examId", Label: "Exam", Type: "select", DynamicOptions: "exams"},
			{Name: "from", Label: "From", Type: "date"},
			{Name: "to", Label: "To", Type: "date"},
		},
		Inputs:  models.InputHandle(),
		Outputs: models.OutputHandles("output", "Next"),
		OutputVariables: []models.OutputVariable{
			{Name: "report", Label: "Report", Description: "Report data and link"},
			{Name: "reportId", Label: "Report id"},
		},
	}
}
