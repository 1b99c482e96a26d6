package mocks

import (
	"context"

	"github.com/dukex/classflow/pkg/eventbus"
	"github.com/dukex/classflow/pkg/events"
	"github.com/stretchr/testify/mock"
)

// MockEventBus records the lifecycle events the engine publishes.
type MockEventBus struct {
	mock.Mock
}

// ExpectPublish accepts every event published for workflowID and answers with err.
func (m *MockEventBus) ExpectPublish(workflowID string, err error) *mock.Call {
	return m.On("Publish", mock.Anything, workflowID, mock.Anything).Return(err)
}

// Published returns the events published for workflowID, in order.
func (m *MockEventBus) Published(workflowID string) []eventbus.Event {
	var published []eventbus.Event

	for _, call := range m.Calls {
		if call.Method != "Publish" || call.Arguments.String(1) != workflowID {
			continue
		}

		if event, ok := call.Arguments.Get(2).(eventbus.Event); ok {
			published = append(published, event)
		}
	}

	return published
}

// PublishedTypes is Published reduced to event types.
func (m *MockEventBus) PublishedTypes(workflowID string) []events.EventType {
	published := m.Published(workflowID)
	types := make([]events.EventType, 0, len(published))

	for _, event := range published {
		types = append(types, event.GetType())
	}

	return types
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}
