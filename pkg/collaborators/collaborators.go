// Package collaborators declares the school services node executors call into:
// mail delivery, exams, students, attendance, forms, reports and the AI service.
package collaborators

import (
	"context"
	"time"
)

type EmailMessage struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	HTML    bool     `json:"html,omitempty"`
}

type EmailReceipt struct {
	MessageID string `json:"messageId"`
	Accepted  int    `json:"accepted"`
}

type Mailer interface {
	SendEmail(ctx context.Context, msg EmailMessage) (*EmailReceipt, error)
}

type ExamCriteria struct {
	Title         string `json:"title"`
	ClassID       string `json:"classId,omitempty"`
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

type Exam struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	ClassID       string           `json:"classId,omitempty"`
	Topic         string           `json:"topic"`
	Difficulty    string           `json:"difficulty"`
	QuestionCount int              `json:"questionCount"`
	Questions     []map[string]any `json:"questions,omitempty"`
}

type Exams interface {
	CreateExam(ctx context.Context, criteria ExamCriteria) (*Exam, error)
}

type StudentFilter struct {
	ClassID string `json:"classId,omitempty"`
	Status  string `json:"status,omitempty"`
}

type Student struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	ClassID string         `json:"classId,omitempty"`
	Status  string         `json:"status,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

type Students interface {
	FetchStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
	UpdateStudent(ctx context.Context, id string, fields map[string]any) (*Student, error)
}

type AttendanceRequest struct {
	ClassID         string `json:"classId"`
	DurationMinutes int    `json:"durationMinutes"`
}

type AttendanceSession struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CheckInURL string    `json:"checkInUrl"`
}

type Attendance interface {
	CreateSession(ctx context.Context, req AttendanceRequest) (*AttendanceSession, error)
}

type FormRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Fields      []map[string]any `json:"fields"`
}

type Form struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Forms interface {
	CreateForm(ctx context.Context, req FormRequest) (*Form, error)
}

type ReportType string

const (
	ReportAttendance       ReportType = "attendance"
	ReportExamResults      ReportType = "exam-results"
	ReportClassPerformance ReportType = "class-performance"
	ReportStudentProgress  ReportType = "student-progress"
)

// ReportTypes lists the report types in display order.
var ReportTypes = []ReportType{ReportAttendance, ReportExamResults, ReportClassPerformance, ReportStudentProgress}

func (t ReportType) Valid() bool {
	for _, known := range ReportTypes {
		if t == known {
			return true
		}
	}

	return false
}

type ReportRequest struct {
	Type      ReportType `json:"type"`
	ClassID   string     `json:"classId,omitempty"`
	StudentID string     `json:"studentId,omitempty"`
	ExamID    string     `json:"examId,omitempty"`
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
}

type Report struct {
	ID   string         `json:"id"`
	Type ReportType     `json:"type"`
	URL  string         `json:"url,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

type Reports interface {
	GenerateReport(ctx context.Context, req ReportRequest) (*Report, error)
}

type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type Generation struct {
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

type GradeRequest struct {
	Question string  `json:"question,omitempty"`
	Answer   string  `json:"answer"`
	Rubric   string  `json:"rubric"`
	MaxScore float64 `json:"maxScore"`
}

type Grade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type AI interface {
	Generate(ctx context.Context, req GenerateRequest) (*Generation, error)
	Grade(ctx context.Context, req GradeRequest) (*Grade, error)
}

// Services bundles the collaborators handed to the executors. Nil members are allowed;
// the matching nodes then fail with a "not configured" error.
type Services struct {
	Mailer     Mailer
	Exams      Exams
	Students   Students
	Attendance Attendance
	Forms      Forms
	Reports    Reports
	AI         AI
}
