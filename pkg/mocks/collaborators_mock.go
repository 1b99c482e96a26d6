package mocks

import (
	"context"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of collaborators.Mailer interface.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, msg collaborators.EmailMessage) (*collaborators.EmailReceipt, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.EmailReceipt), args.Error(1)
}

// MockExams is a mock implementation of collaborators.Exams interface.
type MockExams struct {
	mock.Mock
}

func (m *MockExams) CreateExam(ctx context.Context, criteria collaborators.ExamCriteria) (*collaborators.Exam, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Exam), args.Error(1)
}

// MockStudents is a mock implementation of collaborators.Students interface.
type MockStudents struct {
	mock.Mock
}

func (m *MockStudents) FetchStudents(ctx context.Context, filter collaborators.StudentFilter) ([]collaborators.Student, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]collaborators.Student), args.Error(1)
}

func (m *MockStudents) UpdateStudent(ctx context.Context, id string, fields map[string]any) (*collaborators.Student, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Student), args.Error(1)
}

// MockAttendance is a mock implementation of collaborators.Attendance interface.
type MockAttendance struct {
	mock.Mock
}

func (m *MockAttendance) CreateSession(ctx context.Context, req collaborators.AttendanceRequest) (*collaborators.AttendanceSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.AttendanceSession), args.Error(1)
}

// MockForms is a mock implementation of collaborators.Forms interface.
type MockForms struct {
	mock.Mock
}

func (m *MockForms) CreateForm(ctx context.Context, req collaborators.FormRequest) (*collaborators.Form, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Form), args.Error(1)
}

// MockReports is a mock implementation of collaborators.Reports interface.
type MockReports struct {
	mock.Mock
}

func (m *MockReports) GenerateReport(ctx context.Context, req collaborators.ReportRequest) (*collaborators.Report, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Report), args.Error(1)
}

// MockAI is a mock implementation of collaborators.AI interface.
type MockAI struct {
	mock.Mock
}

func (m *MockAI) Generate(ctx context.Context, req collaborators.GenerateRequest) (*collaborators.Generation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Generation), args.Error(1)
}

func (m *MockAI) Grade(ctx context.Context, req collaborators.GradeRequest) (*collaborators.Grade, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*collaborators.Grade), args.Error(1)
}
