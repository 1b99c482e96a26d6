package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/persistence/file"
	"github.com/dukex/classflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflow(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewWorkflow(persistence)

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)

	message, ok = NewWorkflow(nil).HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer not initialized", message)
}

func TestWorkflow_SaveGeneratesIDAndKeepsCreatedAt(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	wf := testutil.CreateTestWorkflow(testutil.WithWorkflowID(""))
	wf.CreatedAt = time.Time{}

	created, err := service.Save(t.Context(), wf)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	createdAt := created.CreatedAt

	replacement := testutil.CreateTestWorkflow(testutil.WithWorkflowID(created.ID))
	replacement.Name = "Weekly attendance"
	replacement.CreatedAt = time.Time{}

	updated, err := service.Save(t.Context(), replacement)
	require.NoError(t, err)
	assert.Equal(t, "Weekly attendance", updated.Name)
	assert.WithinDuration(t, createdAt, updated.CreatedAt, time.Millisecond)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly attendance", fetched.Name)
}

func TestWorkflow_SaveRejectsInvalidDefinitions(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	tests := []struct {
		name     string
		workflow *models.Workflow
		contains string
	}{
		{
			name:     "missing name",
			workflow: testutil.CreateTestWorkflow(func(w *models.Workflow) { w.Name = "" }),
			contains: "Name",
		},
		{
			name: "dangling edge",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithEdges(testutil.Edge("start", "nowhere", "")),
			),
			contains: "edge references unknown node",
		},
		{
			name: "duplicate node ids",
			workflow: testutil.CreateTestWorkflow(
				testutil.WithNodes(testutil.CreateTestNode("log", testutil.WithNodeID("start"))),
			),
			contains: "duplicate node id",
		},
		{
			name:     "bad cron",
			workflow: testutil.CreateTestWorkflow(testutil.WithSchedule("every day")),
			contains: "invalid cron expression",
		},
		{
			name:     "event without name",
			workflow: testutil.CreateTestWorkflow(testutil.WithEvent("")),
			contains: "event trigger requires an event name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Save(t.Context(), tt.workflow)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.ErrorIs(t, err, ErrInvalidWorkflow)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	_, err := service.Save(t.Context(), nil)
	require.ErrorIs(t, err, ErrWorkflowNil)
}

func TestWorkflow_FetchByID_NotFound(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	workflow, err := service.FetchByID(t.Context(), "non-existent")
	assert.Nil(t, workflow)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	_, err = service.FetchByID(t.Context(), "../etc")
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_ListWorkflows(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	workflows := []*models.Workflow{
		testutil.CreateTestWorkflow(func(w *models.Workflow) { w.Name = "Weekly report"; w.Category = "reports" }, testutil.WithSchedule("@weekly")),
		testutil.CreateTestWorkflow(func(w *models.Workflow) { w.Name = "auto grade" }, testutil.WithEvent("EXAM_SUBMITTED")),
		testutil.CreateTestWorkflow(func(w *models.Workflow) { w.Name = "Old welcome" }, testutil.Inactive()),
		testutil.CreateTestWorkflow(func(w *models.Workflow) { w.Name = "Manual roll call"; w.Trigger = models.Trigger{} }),
	}

	for _, wf := range workflows {
		_, err := service.Save(t.Context(), wf)
		require.NoError(t, err)
	}

	names := func(list []*models.Workflow) []string {
		out := make([]string, 0, len(list))
		for _, wf := range list {
			out = append(out, wf.Name)
		}

		return out
	}

	active := true
	inactive := false

	tests := []struct {
		name     string
		req      ListWorkflowsRequest
		expected []string
	}{
		{name: "all, by name", req: ListWorkflowsRequest{}, expected: []string{"auto grade", "Manual roll call", "Old welcome", "Weekly report"}},
		{name: "active", req: ListWorkflowsRequest{Active: &active}, expected: []string{"auto grade", "Manual roll call", "Weekly report"}},
		{name: "inactive", req: ListWorkflowsRequest{Active: &inactive}, expected: []string{"Old welcome"}},
		{name: "schedule", req: ListWorkflowsRequest{Trigger: models.TriggerSchedule}, expected: []string{"Weekly report"}},
		{name: "manual includes untyped", req: ListWorkflowsRequest{Trigger: models.TriggerManual}, expected: []string{"Manual roll call", "Old welcome"}},
		{name: "category", req: ListWorkflowsRequest{Category: "Reports"}, expected: []string{"Weekly report"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.ListWorkflows(t.Context(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(result))
		})
	}

	_, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{Trigger: "webhook"})
	require.ErrorIs(t, err, ErrInvalidTrigger)
}

func TestWorkflow_Delete(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	created, err := service.Save(t.Context(), testutil.CreateTestWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	err = service.Delete(t.Context(), created.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("op", "code", "msg", ErrInvalidRequest)))
	assert.True(t, IsConflictError(NewConflictError("op", "code", "msg", ErrExecutionFinished)))
	assert.True(t, IsConflictError(persistence.NewWorkflowError("execute", "wf", ErrWorkflowInactive)))
	assert.True(t, IsConflictError(persistence.NewWorkflowError("execute", "wf", ErrBrokenDefinition)))
	assert.False(t, IsValidationError(errors.New("disk full")))
	assert.False(t, IsConflictError(errors.New("disk full")))
}
