package services

import (
	"errors"
	"testing"

	"github.com/dukex/classflow/pkg/mocks"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

func TestWorkflow_StorageFailures(t *testing.T) {
	store := mocks.NewMockPersistence()
	service := NewWorkflow(store)

	store.On("HealthCheck", mock.Anything).Return(errDiskFull)
	store.Workflows.On("GetAll", mock.Anything).Return(nil, errDiskFull)
	store.Workflows.On("GetByID", mock.Anything, "wf-1").Return(nil, nil)
	store.Workflows.On("Save", mock.Anything, mock.Anything).Return(errDiskFull)

	message, ok := service.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Contains(t, message, "disk full")

	_, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{})
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, IsValidationError(err))

	wf := &models.Workflow{ID: "wf-1", Name: "Roll call", Trigger: models.Trigger{Type: models.TriggerManual}}

	_, err = service.Save(t.Context(), wf)
	require.ErrorIs(t, err, errDiskFull)

	store.AssertExpectations(t)
	store.Workflows.AssertExpectations(t)
}

func TestExecution_CancelSaveFailure(t *testing.T) {
	store := mocks.NewMockPersistence()
	engine := &mocks.MockEngine{}
	service := NewExecution(store, engine)

	store.Executions.On("GetByID", mock.Anything, "exec-1").
		Return(&models.Execution{ID: "exec-1", Status: models.ExecutionRunning}, nil)
	store.Executions.On("Save", mock.Anything, mock.Anything).Return(errDiskFull)
	store.Executions.On("List", mock.Anything, persistence.ListExecutionsOptions{Limit: 5}).Return(nil, errDiskFull)
	engine.On("Cancel", "exec-1").Return(false)

	_, err := service.Cancel(t.Context(), "exec-1")
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, IsConflictError(err))

	_, err = service.ListExecutions(t.Context(), ListExecutionsRequest{Limit: 5})
	require.ErrorIs(t, err, errDiskFull)

	store.Executions.AssertExpectations(t)
	engine.AssertExpectations(t)
}
