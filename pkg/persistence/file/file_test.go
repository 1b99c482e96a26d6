package file

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence(t *testing.T) {
	assert.Equal(t, "/tmp/test", NewPersistence("/tmp/test").root)
	assert.Equal(t, "/tmp/test", NewPersistence("file:///tmp/test").root)
}

func TestPersistence_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewPersistence(dir).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(filepath.Join(dir, "missing")).HealthCheck(t.Context()))
	assert.NoError(t, NewPersistence(dir).Close(t.Context()))
}

func TestWorkflowRepository_CRUD(t *testing.T) {
	dir := t.TempDir()
	repo := NewPersistence(dir).WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(testutil.WithWorkflowID("weekly-digest"))
	workflow.CreatedAt = time.Time{}

	require.NoError(t, repo.Save(t.Context(), workflow))
	assert.FileExists(t, filepath.Join(dir, "workflows", "weekly-digest.json"))
	assert.False(t, workflow.CreatedAt.IsZero())
	assert.False(t, workflow.UpdatedAt.IsZero())

	loaded, err := repo.GetByID(t.Context(), "weekly-digest")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, "manual-trigger", loaded.Nodes[0].Data.NodeType())

	missing, err := repo.GetByID(t.Context(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(t.Context(), "weekly-digest"))
	require.NoError(t, repo.Delete(t.Context(), "weekly-digest"), "deleting twice is fine")

	all, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWorkflowRepository_RejectsUnsafeIDs(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	_, err := repo.GetByID(t.Context(), "../secrets")
	require.ErrorIs(t, err, persistence.ErrInvalidID)

	err = repo.Save(t.Context(), testutil.CreateTestWorkflow(testutil.WithWorkflowID("a/b")))
	require.ErrorIs(t, err, persistence.ErrInvalidID)
}

func TestWorkflowRepository_FindActiveByTrigger(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	for _, wf := range []*models.Workflow{
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("nightly"), testutil.WithSchedule("0 2 * * *")),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("paused"), testutil.WithSchedule("0 3 * * *"), testutil.Inactive()),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("on-submit"), testutil.WithEvent("EXAM_SUBMITTED")),
		testutil.CreateTestWorkflow(testutil.WithWorkflowID("manual")),
	} {
		require.NoError(t, repo.Save(t.Context(), wf))
	}

	scheduled, err := repo.FindActiveByTrigger(t.Context(), models.TriggerSchedule)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "nightly", scheduled[0].ID)

	events, err := repo.FindActiveByTrigger(t.Context(), models.TriggerEvent)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "EXAM_SUBMITTED", events[0].Trigger.EventName())
}

func TestWorkflowRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "workflows"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workflows", "broken.json"), []byte("{"), 0600))

	repo := NewPersistence(dir).WorkflowRepository()

	_, err := repo.GetByID(t.Context(), "broken")
	require.Error(t, err)

	_, err = repo.GetAll(t.Context())
	require.Error(t, err)
}

func TestExecutionRepository_SaveAndList(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	for i := range 5 {
		status := models.ExecutionCompleted
		if i%2 == 1 {
			status = models.ExecutionFailed
		}

		workflowID := "wf-a"
		if i == 4 {
			workflowID = "wf-b"
		}

		require.NoError(t, repo.Save(t.Context(), &models.Execution{
			ID:          fmt.Sprintf("exec-%d", i),
			WorkflowID:  workflowID,
			Status:      status,
			Context:     map[string]any{"i": i},
			TriggeredBy: models.TriggeredByManual,
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.List(t.Context(), persistence.ListExecutionsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "exec-4", all[0].ID, "newest first")

	failed, err := repo.List(t.Context(), persistence.ListExecutionsOptions{WorkflowID: "wf-a", Status: models.ExecutionFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 2)

	limited, err := repo.List(t.Context(), persistence.ListExecutionsOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	record, err := repo.GetByID(t.Context(), "exec-2")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.InDelta(t, 2, record.Context["i"], 0.0001)

	missing, err := repo.GetByID(t.Context(), "exec-99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExecutionRepository_SaveOverwrites(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ExecutionRepository()
	execution := &models.Execution{ID: "exec-1", WorkflowID: "wf", Status: models.ExecutionRunning, StartedAt: time.Now().UTC()}

	require.NoError(t, repo.Save(t.Context(), execution))

	execution.Status = models.ExecutionCompleted
	execution.ExecutedNodes = append(execution.ExecutedNodes, models.ExecutedNode{NodeID: "start", Status: models.NodeCompleted})
	require.NoError(t, repo.Save(t.Context(), execution))

	loaded, err := repo.GetByID(t.Context(), "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCompleted, loaded.Status)
	assert.Len(t, loaded.ExecutedNodes, 1)
}
