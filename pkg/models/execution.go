package models

import "time"

// ExecutionStatus is the lifecycle state of an Execution.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed || s == ExecutionCancelled
}

// NodeStatus is the state of a single node visit.
type NodeStatus string

const (
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
)

// Well known values for Execution.TriggeredBy.
const (
	TriggeredByManual    = "manual"
	TriggeredByScheduler = "scheduler"
	TriggeredBySystem    = "system"
)

// Execution is the persisted record of one workflow run.
type Execution struct {
	ID            string          `json:"id"`
	WorkflowID    string          `json:"workflowId"`
	Status        ExecutionStatus `json:"status"`
	Context       map[string]any  `json:"context"`
	ExecutedNodes []ExecutedNode  `json:"executedNodes"`
	TriggeredBy   string          `json:"triggeredBy"`
	StartedAt     time.Time       `json:"startedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
}

// ExecutedNode is one entry of the visit log.
type ExecutedNode struct {
	NodeID    string         `json:"nodeId"`
	NodeType  string         `json:"nodeType,omitempty"`
	Status    NodeStatus     `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// LoopState is the per-loop-node iteration cursor kept in an execution context.
type LoopState struct {
	Items        []any `json:"items"`
	CurrentIndex int   `json:"currentIndex"`
	Total        int   `json:"total"`
}

// Done reports whether every item has been handed out.
func (l *LoopState) Done() bool {
	return l.CurrentIndex >= l.Total
}

// Snapshot returns a copy of e that shares no mutable containers with it.
func (e *Execution) Snapshot() *Execution {
	clone := *e
	clone.Context = CopyContext(e.Context)

	clone.ExecutedNodes = make([]ExecutedNode, len(e.ExecutedNodes))
	for i, entry := range e.ExecutedNodes {
		entry.Result = CopyContext(entry.Result)
		clone.ExecutedNodes[i] = entry
	}

	if e.CompletedAt != nil {
		completedAt := *e.CompletedAt
		clone.CompletedAt = &completedAt
	}

	return &clone
}

// CopyContext deep copies the map and slice containers of a context.
func CopyContext(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}

	return dst
}

func copyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return CopyContext(value)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = copyValue(item)
		}

		return out
	case *LoopState:
		if value == nil {
			return value
		}

		state := *value
		state.Items = copyValue(value.Items).([]any)

		return &state
	default:
		return v
	}
}
