// Package events defines the messages exchanged over the event bus: execution lifecycle
// notifications published by the engine and domain events that start workflows.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every classflow event; the type travels in the message metadata.
const Topic = "classflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	NodeExecutedEvent       EventType = "execution.node.executed"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"

	// DomainEventReceivedEvent asks the dispatcher to start the workflows listening for Name.
	DomainEventReceivedEvent EventType = "domain.event.received"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	TriggeredBy string `json:"triggered_by"`
}

func (ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type NodeExecuted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	NodeID      string `json:"node_id"`
	NodeType    string `json:"node_type"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func (NodeExecuted) GetType() EventType {
	return NodeExecutedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID   string        `json:"execution_id"`
	Duration      time.Duration `json:"duration"`
	NodesExecuted int           `json:"nodes_executed"`
}

func (ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	NodeID      string `json:"node_id,omitempty"`
	Error       string `json:"error"`
}

func (ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type ExecutionCancelled struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

func (ExecutionCancelled) GetType() EventType {
	return ExecutionCancelledEvent
}

// DomainEventReceived carries an occurrence such as "EXAM_SUBMITTED" with its payload.
type DomainEventReceived struct {
	BaseEvent

	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
}

func (DomainEventReceived) GetType() EventType {
	return DomainEventReceivedEvent
}

// NewEvent returns an empty event of eventType, ready to be decoded into.
func NewEvent(eventType EventType) (any, bool) {
	switch eventType {
	case ExecutionStartedEvent:
		return &ExecutionStarted{}, true
	case NodeExecutedEvent:
		return &NodeExecuted{}, true
	case ExecutionCompletedEvent:
		return &ExecutionCompleted{}, true
	case ExecutionFailedEvent:
		return &ExecutionFailed{}, true
	case ExecutionCancelledEvent:
		return &ExecutionCancelled{}, true
	case DomainEventReceivedEvent:
		return &DomainEventReceived{}, true
	default:
		return nil, false
	}
}
