// Package switchnode provides multi-way branching: it routes to the edges whose
// handle matches the evaluated value, or to the "default" edges.
package switchnode

import (
	"context"

	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
)

const (
	NodeType = "switch"

	OutputPortDefault = "default"
)

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Execute resolves value, maps it through the optional cases, and routes to the matching handle.
//
// cases is a list of {"value": "...", "handle": "..."}; without a matching case the
// stringified value itself is used as the handle.
func (e *Executor) Execute(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	value := template.Stringify(nodes.Value(req.Config, "value", req.Variables))

	handle := value
	if mapped, ok := caseHandle(req.Config["cases"], value); ok {
		handle = mapped
	}

	matched := true

	targets := req.Workflow.TargetsByHandle(req.Node.ID, handle)
	if len(targets) == 0 {
		matched = false
		targets = req.Workflow.TargetsByHandle(req.Node.ID, OutputPortDefault)
	}

	output := map[string]any{
		"switchValue":   value,
		"switchMatched": matched,
	}

	return protocol.Route(output, targets), nil
}

func caseHandle(raw any, value string) (string, bool) {
	cases, ok := nodes.ToSlice(raw)
	if !ok {
		return "", false
	}

	for _, c := range cases {
		entry, isMap := c.(map[string]any)
		if !isMap {
			continue
		}

		if template.Stringify(entry["value"]) != value {
			continue
		}

		if handle, hasHandle := entry["handle"].(string); hasHandle && handle != "" {
			return handle, true
		}

		return value, true
	}

	return "", false
}
