package mocks

import (
	"context"

	"github.com/dukex/classflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock of the workflow executor as seen by the scheduler, the dispatcher and the services.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Execute(ctx context.Context, workflowID, triggeredBy string, initial map[string]any) (*models.Execution, error) {
	args := m.Called(ctx, workflowID, triggeredBy, initial)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Execution), args.Error(1)
}

func (m *MockEngine) Cancel(executionID string) bool {
	args := m.Called(executionID)

	return args.Bool(0)
}
