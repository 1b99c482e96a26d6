package collaborators

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// StatusError is returned when a collaborator answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client talks JSON over HTTP to the school API and the AI service.
type Client struct {
	baseURL string
	aiURL   string
	token   string
	http    *http.Client
}

type ClientOption func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the default client, which has a 60s timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

func NewClient(baseURL, aiURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		aiURL:   strings.TrimRight(aiURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Services exposes the client through every collaborator interface it serves.
// Members whose base URL is empty are left nil.
func (c *Client) Services() Services {
	var services Services

	if c.baseURL != "" {
		services.Mailer = c
		services.Exams = c
		services.Students = c
		services.Attendance = c
		services.Forms = c
		services.Reports = c
	}

	if c.aiURL != "" {
		services.AI = c
	}

	return services
}

func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) (*EmailReceipt, error) {
	var receipt EmailReceipt

	err := c.do(ctx, http.MethodPost, c.baseURL+"/emails", msg, &receipt)
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (c *Client) CreateExam(ctx context.Context, criteria ExamCriteria) (*Exam, error) {
	var exam Exam

	err := c.do(ctx, http.MethodPost, c.baseURL+"/exams", criteria, &exam)
	if err != nil {
		return nil, err
	}

	return &exam, nil
}

func (c *Client) FetchStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	query := url.Values{}
	if filter.ClassID != "" {
		query.Set("classId", filter.ClassID)
	}

	if filter.Status != "" {
		query.Set("status", filter.Status)
	}

	endpoint := c.baseURL + "/students"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var students []Student

	err := c.do(ctx, http.MethodGet, endpoint, nil, &students)
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (c *Client) UpdateStudent(ctx context.Context, id string, fields map[string]any) (*Student, error) {
	var student Student

	err := c.do(ctx, http.MethodPatch, c.baseURL+"/students/"+url.PathEscape(id), fields, &student)
	if err != nil {
		return nil, err
	}

	return &student, nil
}

func (c *Client) CreateSession(ctx context.Context, req AttendanceRequest) (*AttendanceSession, error) {
	var session AttendanceSession

	err := c.do(ctx, http.MethodPost, c.baseURL+"/attendance/sessions", req, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (c *Client) CreateForm(ctx context.Context, req FormRequest) (*Form, error) {
	var form Form

	err := c.do(ctx, http.MethodPost, c.baseURL+"/forms", req, &form)
	if err != nil {
		return nil, err
	}

	return &form, nil
}

func (c *Client) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	var report Report

	err := c.do(ctx, http.MethodPost, c.baseURL+"/reports", req, &report)
	if err != nil {
		return nil, err
	}

	return &report, nil
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	var generation Generation

	err := c.do(ctx, http.MethodPost, c.aiURL+"/generate", req, &generation)
	if err != nil {
		return nil, err
	}

	return &generation, nil
}

func (c *Client) Grade(ctx context.Context, req GradeRequest) (*Grade, error) {
	var grade Grade

	err := c.do(ctx, http.MethodPost, c.aiURL+"/grade", req, &grade)
	if err != nil {
		return nil, err
	}

	return &grade, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
