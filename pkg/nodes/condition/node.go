// Package condition provides the branching node, which routes to its "true" or "false" edges.
package condition

import (
	"context"
	"strings"

	"github.com/dukex/classflow/pkg/expression"
	"github.com/dukex/classflow/pkg/nodes"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/template"
)

const (
	NodeType = "condition"

	OutputPortTrue  = "true"
	OutputPortFalse = "false"
)

type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Execute evaluates the condition and routes to the edges of the chosen side only.
func (e *Executor) Execute(_ context.Context, req protocol.Request) (*protocol.Result, error) {
	trueLabel := nodes.String(req.Config, "trueLabel", req.Variables)
	if trueLabel == "" {
		trueLabel = OutputPortTrue
	}

	falseLabel := nodes.String(req.Config, "falseLabel", req.Variables)
	if falseLabel == "" {
		falseLabel = OutputPortFalse
	}

	raw, _ := req.Config["condition"].(string)
	result := e.evaluate(raw, req)

	handle := falseLabel
	if result {
		handle = trueLabel
	}

	return protocol.Route(
		map[string]any{"conditionResult": result},
		req.Workflow.TargetsByHandle(req.Node.ID, handle),
	), nil
}

func (e *Executor) evaluate(raw string, req protocol.Request) bool {
	resolved := template.ResolveString(raw, req.Variables)

	condition, isString := resolved.(string)
	if !isString {
		return expression.Truthy(resolved)
	}

	condition = strings.TrimSpace(condition)
	if condition == "" {
		return false
	}

	tokens := strings.Fields(condition)
	if len(tokens) == 3 && !strings.Contains(tokens[0], ".") {
		left, leftKnown := operand(tokens[0], req.Variables)
		right, rightKnown := operand(tokens[2], req.Variables)

		if (!leftKnown || !rightKnown) && isOrdering(tokens[1]) {
			return false
		}

		result, ok := expression.Compare(left, tokens[1], right)
		if !ok {
			req.Log().Warn("Unknown condition operator", "operator", tokens[1], "condition", condition)

			return false
		}

		return result
	}

	result, err := expression.Evaluate(condition, req.Variables)
	if err != nil {
		req.Log().Warn("Condition evaluation failed", "condition", condition, "error", err)

		return false
	}

	return result
}

// operand resolves a token as a context key first, then as a literal.
// The bool is false for a bare word that is neither, which never orders.
func operand(token string, vars map[string]any) (any, bool) {
	if value, ok := vars[token]; ok {
		return value, true
	}

	if n, ok := expression.ToNumber(token); ok {
		return n, true
	}

	switch token {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}

	if isQuoted(token) {
		return token[1 : len(token)-1], true
	}

	return token, false
}

func isQuoted(token string) bool {
	if len(token) < 2 {
		return false
	}

	first, last := token[0], token[len(token)-1]

	return (first == '"' || first == '\'') && first == last
}

func isOrdering(op string) bool {
	switch op {
	case ">", "<", ">=", "<=":
		return true
	default:
		return false
	}
}
