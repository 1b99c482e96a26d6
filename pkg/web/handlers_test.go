package web_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/classflow/pkg/dispatcher"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes/setvariable"
	"github.com/dukex/classflow/pkg/nodes/trigger"
	"github.com/dukex/classflow/pkg/persistence/file"
	"github.com/dukex/classflow/pkg/registry"
	"github.com/dukex/classflow/pkg/services"
	"github.com/dukex/classflow/pkg/testutil"
	"github.com/dukex/classflow/pkg/web"
	"github.com/dukex/classflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *fiber.App
	engine *workflow.Executor
	store  *file.Persistence
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(slog.Default())
	reg.MustRegister(trigger.ManualNodeType, trigger.NewManual())
	reg.MustRegister(trigger.EventNodeType, trigger.NewEvent())
	reg.MustRegister(setvariable.NodeType, setvariable.NewExecutor())

	engine := workflow.NewExecutor(store, reg, slog.Default())
	t.Cleanup(engine.Wait)

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(store),
		services.NewExecution(store, engine),
		dispatcher.New(store.WorkflowRepository(), engine, slog.Default()),
		validator.New(validator.WithRequiredStructEnabled()),
		reg,
	)

	return &testServer{app: web.NewApp(handlers), engine: engine, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func greetingWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	overrides = append([]func(*models.Workflow){
		testutil.WithNodes(testutil.CreateTestNode(setvariable.NodeType,
			testutil.WithNodeID("greet"),
			testutil.WithData(map[string]any{"name": "greeting", "value": "hello {{studentName}}"}),
		)),
		testutil.WithEdges(testutil.Edge("start", "greet", "")),
	}, overrides...)

	return testutil.CreateTestWorkflow(overrides...)
}

func decodeProblem(t *testing.T, body []byte) map[string]any {
	t.Helper()

	var problem map[string]any
	require.NoError(t, json.Unmarshal(body, &problem))

	return problem
}

func TestAPI_RootAndLiveness(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Classflow API", string(body))

	status, body = s.do(t, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Contains(t, health, "checkers")
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "valid definition",
			body:           greetingWorkflow(testutil.WithWorkflowID("")),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid JSON format",
		},
		{
			name:           "missing name",
			body:           greetingWorkflow(func(w *models.Workflow) { w.Name = "" }),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Name",
		},
		{
			name:           "dangling edge",
			body:           greetingWorkflow(testutil.WithEdges(testutil.Edge("greet", "missing", ""))),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "edge references unknown node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t)

			status, body := s.do(t, http.MethodPost, "/workflows", tt.body)
			require.Equal(t, tt.expectedStatus, status, string(body))

			if tt.expectedDetail != "" {
				assert.Contains(t, decodeProblem(t, body)["detail"], tt.expectedDetail)

				return
			}

			var created models.Workflow
			require.NoError(t, json.Unmarshal(body, &created))
			assert.NotEmpty(t, created.ID)
			assert.Len(t, created.Nodes, 2)

			status, _ = s.do(t, http.MethodGet, "/workflows/"+created.ID, nil)
			assert.Equal(t, http.StatusOK, status)
		})
	}
}

func TestAPIHandlers_GetWorkflows(t *testing.T) {
	s := setupTestServer(t)

	for _, wf := range []*models.Workflow{
		greetingWorkflow(func(w *models.Workflow) { w.Name = "Welcome" }),
		greetingWorkflow(func(w *models.Workflow) { w.Name = "Archived" }, testutil.Inactive()),
		greetingWorkflow(func(w *models.Workflow) { w.Name = "Enrolled" }, testutil.WithEvent("STUDENT_ENROLLED")),
	} {
		status, body := s.do(t, http.MethodPost, "/workflows", wf)
		require.Equal(t, http.StatusCreated, status, string(body))
	}

	tests := []struct {
		query    string
		status   int
		expected []string
	}{
		{query: "", status: http.StatusOK, expected: []string{"Archived", "Enrolled", "Welcome"}},
		{query: "?active=true", status: http.StatusOK, expected: []string{"Enrolled", "Welcome"}},
		{query: "?trigger=event", status: http.StatusOK, expected: []string{"Enrolled"}},
		{query: "?active=maybe", status: http.StatusBadRequest},
		{query: "?trigger=webhook", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, body := s.do(t, http.MethodGet, "/workflows"+tt.query, nil)
			require.Equal(t, tt.status, status, string(body))

			if tt.status != http.StatusOK {
				return
			}

			var list web.WorkflowListResponse
			require.NoError(t, json.Unmarshal(body, &list))

			names := make([]string, 0, len(list.Workflows))
			for _, wf := range list.Workflows {
				names = append(names, wf.Name)
			}

			assert.Equal(t, tt.expected, names)
			assert.Equal(t, len(tt.expected), list.TotalCount)
		})
	}
}

func TestAPIHandlers_WorkflowNotFound(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.do(t, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "workflow_not_found", decodeProblem(t, body)["type"])

	status, _ = s.do(t, http.MethodDelete, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/workflows/missing/execute", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_DeleteWorkflow(t *testing.T) {
	s := setupTestServer(t)

	wf := greetingWorkflow(testutil.WithWorkflowID("to-delete"))
	require.NoError(t, s.store.WorkflowRepository().Save(t.Context(), wf))

	status, _ := s.do(t, http.MethodDelete, "/workflows/to-delete", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodGet, "/workflows/to-delete", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_ExecuteWorkflow(t *testing.T) {
	s := setupTestServer(t)

	wf := greetingWorkflow(testutil.WithWorkflowID("greet-student"))
	require.NoError(t, s.store.WorkflowRepository().Save(t.Context(), wf))

	status, body := s.do(t, http.MethodPost, "/workflows/greet-student/execute", services.ExecuteRequest{
		Context: map[string]any{"studentName": "Ana"},
	})
	require.Equal(t, http.StatusAccepted, status, string(body))

	var started models.Execution
	require.NoError(t, json.Unmarshal(body, &started))
	assert.Equal(t, "greet-student", started.WorkflowID)
	assert.Equal(t, models.TriggeredByManual, started.TriggeredBy)

	s.engine.Wait()

	status, body = s.do(t, http.MethodGet, "/executions/"+started.ID, nil)
	require.Equal(t, http.StatusOK, status)

	var finished models.Execution
	require.NoError(t, json.Unmarshal(body, &finished))
	assert.Equal(t, models.ExecutionCompleted, finished.Status)
	assert.Equal(t, "hello Ana", finished.Context["greeting"])
	require.Len(t, finished.ExecutedNodes, 2)
	assert.Equal(t, "greet", finished.ExecutedNodes[1].NodeID)

	status, body = s.do(t, http.MethodGet, "/executions?workflowId=greet-student", nil)
	require.Equal(t, http.StatusOK, status)

	var list web.ExecutionListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.TotalCount)

	status, body = s.do(t, http.MethodPost, "/executions/"+started.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", decodeProblem(t, body)["type"])
}

func TestAPIHandlers_ExecuteRejectsInactiveWorkflow(t *testing.T) {
	s := setupTestServer(t)

	wf := greetingWorkflow(testutil.WithWorkflowID("paused"), testutil.Inactive())
	require.NoError(t, s.store.WorkflowRepository().Save(t.Context(), wf))

	status, _ := s.do(t, http.MethodPost, "/workflows/paused/execute", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/workflows/paused/execute", "[1,2]")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_ExecutionQueries(t *testing.T) {
	s := setupTestServer(t)

	pending := &models.Execution{
		ID:         "exec-pending",
		WorkflowID: "wf",
		Status:     models.ExecutionPending,
		Context:    map[string]any{},
	}
	require.NoError(t, s.store.ExecutionRepository().Save(t.Context(), pending))

	status, body := s.do(t, http.MethodPost, "/executions/exec-pending/cancel", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var cancelled models.Execution
	require.NoError(t, json.Unmarshal(body, &cancelled))
	assert.Equal(t, models.ExecutionCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CompletedAt)

	status, body = s.do(t, http.MethodGet, "/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "execution_not_found", decodeProblem(t, body)["type"])

	status, _ = s.do(t, http.MethodGet, "/executions?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/executions?limit=ten", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/executions?status=cancelled", nil)
	require.Equal(t, http.StatusOK, status)

	var list web.ExecutionListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Executions, 1)
	assert.Equal(t, "exec-pending", list.Executions[0].ID)
}

func TestAPIHandlers_TriggerEvent(t *testing.T) {
	s := setupTestServer(t)

	enrolled := greetingWorkflow(testutil.WithWorkflowID("enrolled"), testutil.WithEvent("STUDENT_ENROLLED"))
	other := greetingWorkflow(testutil.WithWorkflowID("other"), testutil.WithEvent("EXAM_SUBMITTED"))

	for _, wf := range []*models.Workflow{enrolled, other} {
		require.NoError(t, s.store.WorkflowRepository().Save(t.Context(), wf))
	}

	status, body := s.do(t, http.MethodPost, "/events/STUDENT_ENROLLED", map[string]any{"studentName": "Rui"})
	require.Equal(t, http.StatusAccepted, status, string(body))

	var resp web.EventResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "STUDENT_ENROLLED", resp.Event)
	require.Len(t, resp.ExecutionIDs, 1)

	s.engine.Wait()

	execution, err := s.store.ExecutionRepository().GetByID(t.Context(), resp.ExecutionIDs[0])
	require.NoError(t, err)
	require.NotNil(t, execution)
	assert.Equal(t, "enrolled", execution.WorkflowID)
	assert.Equal(t, models.TriggeredBySystem, execution.TriggeredBy)
	assert.Equal(t, "hello Rui", execution.Context["greeting"])

	status, body = s.do(t, http.MethodPost, "/events/NOBODY_LISTENS", nil)
	require.Equal(t, http.StatusAccepted, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Empty(t, resp.ExecutionIDs)

	status, _ = s.do(t, http.MethodPost, "/events/STUDENT_ENROLLED", "not json")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_GetNodeTypes(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.do(t, http.MethodGet, "/node-types?category=Logic", nil)
	require.Equal(t, http.StatusOK, status)

	var resp web.NodeTypesResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.NodeTypes, 1)
	assert.Equal(t, setvariable.NodeType, resp.NodeTypes[0].Type)

	status, body = s.do(t, http.MethodGet, "/node-types", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp.NodeTypes, 3)
}
