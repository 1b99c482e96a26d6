// Package loop provides the iteration node. Each visit hands out the next item and
// routes to the loop body; once exhausted it routes to the "completed" edges.
package loop

import (
	"context"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
)

const (
	NodeType = "loop"

	OutputPortItem      = "item"
	OutputPortCompleted = "completed"

	DefaultCurrentItemKey = "currentItem"
)

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// StateKey is the context key holding the loop state of nodeID.
func StateKey(nodeID string) string {
	return "loop_" + nodeID
}

func (e *Executor) Execute(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	key := StateKey(req.Node.ID)

	state, ok := stateFrom(req.Variables[key])
	if !ok {
		items := e.items(req)
		state = &models.LoopState{Items: items, CurrentIndex: 0, Total: len(items)}

		req.Log().Debug("Loop started", "node_id", req.Node.ID, "total", state.Total)
	}

	req.Variables[key] = state

	if state.Done() {
		return protocol.Route(
			map[string]any{"loopFinished": true, "loopTotal": state.Total},
			req.Workflow.TargetsByHandle(req.Node.ID, OutputPortCompleted),
		), nil
	}

	itemKey := nodes.String(req.Config, "currentItemKey", req.Variables)
	if itemKey == "" {
		itemKey = DefaultCurrentItemKey
	}

	index := state.CurrentIndex
	item := state.Items[index]
	state.CurrentIndex++

	req.Variables[itemKey] = item

	return protocol.Route(
		map[string]any{itemKey: item, "loopIndex": index},
		e.bodyTargets(req),
	), nil
}

// items accepts a literal array, a template, or the name of a context key.
func (e *Executor) items(req protocol.Request) []any {
	raw := req.Config["items"]

	if name, isString := raw.(string); isString {
		name = strings.TrimSpace(name)

		if !template.HasPlaceholder(name) {
			if value, found := template.Lookup(req.Variables, name); found {
				raw = value
			}
		}
	}

	resolved := template.Resolve(raw, req.Variables)

	items, ok := nodes.ToSlice(resolved)
	if !ok {
		if resolved != nil && resolved != "" {
			req.Log().Warn("Loop items is not an array, nothing to iterate", "node_id", req.Node.ID, "items", resolved)
		}

		return []any{}
	}

	return items
}

// bodyTargets follows the "item" edges, or unlabelled edges when there are none.
func (e *Executor) bodyTargets(req protocol.Request) []string {
	targets := req.Workflow.TargetsByHandle(req.Node.ID, OutputPortItem)
	if len(targets) > 0 {
		return targets
	}

	return req.Workflow.TargetsByHandle(req.Node.ID, "")
}

func stateFrom(value any) (*models.LoopState, bool) {
	switch state := value.(type) {
	case *models.LoopState:
		return state, state != nil
	case models.LoopState:
		return &state, true
	case map[string]any:
		items, _ := nodes.ToSlice(state["items"])
		restored := &models.LoopState{Items: items}

		if idx, ok := state["currentIndex"].(float64); ok {
			restored.CurrentIndex = int(idx)
		} else if idx, ok := state["currentIndex"].(int); ok {
			restored.CurrentIndex = idx
		}

		restored.Total = len(items)

		return restored, true
	default:
		return nil, false
	}
}
