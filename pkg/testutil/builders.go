// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"log/slog"
	"time"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/google/uuid"
)

// CreateTestNode creates a custom node of nodeType with a random id that can be overridden.
func CreateTestNode(nodeType string, overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:   uuid.New().String(),
		Type: models.NodeTypeCustom,
		Data: models.NodeData{"nodeType": nodeType},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeID sets the node id.
func WithNodeID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithData merges fields into the node data.
func WithData(data map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		for k, v := range data {
			n.Data[k] = v
		}
	}
}

// AsTriggerCategory marks the node with the Trigger category.
func AsTriggerCategory() func(*models.Node) {
	return func(n *models.Node) {
		n.Data["category"] = models.CategoryTrigger
	}
}

// Edge builds an edge; handle may be empty.
func Edge(source, target, handle string) *models.Edge {
	return &models.Edge{
		ID:           source + "->" + target + ":" + handle,
		Source:       source,
		Target:       target,
		SourceHandle: handle,
	}
}

// CreateTestWorkflow returns an active manual workflow whose only node is a manual trigger named "start".
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:       uuid.New().String(),
		Name:     "Test Workflow",
		IsActive: true,
		Nodes: []*models.Node{
			CreateTestNode("manual-trigger", WithNodeID("start"), AsTriggerCategory()),
		},
		Edges:     []*models.Edge{},
		Trigger:   models.Trigger{Type: models.TriggerManual},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowID sets the workflow id.
func WithWorkflowID(id string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ID = id
	}
}

// WithNodes appends nodes after the default start node.
func WithNodes(nodes ...*models.Node) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = append(w.Nodes, nodes...)
	}
}

// WithOnlyNodes replaces every node, including the default start node.
func WithOnlyNodes(nodes ...*models.Node) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Nodes = nodes
	}
}

func WithEdges(edges ...*models.Edge) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Edges = append(w.Edges, edges...)
	}
}

// WithSchedule turns the workflow into a scheduled one.
func WithSchedule(cron string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Trigger = models.Trigger{Type: models.TriggerSchedule, Config: &models.TriggerConfig{Cron: cron}}
	}
}

// WithEvent turns the workflow into an event-triggered one.
func WithEvent(name string) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Trigger = models.Trigger{Type: models.TriggerEvent, Config: &models.TriggerConfig{Event: name}}
	}
}

// Inactive marks the workflow as not active.
func Inactive() func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.IsActive = false
	}
}

// NewRequest builds an executor request for nodeID within workflow.
func NewRequest(workflow *models.Workflow, nodeID string, vars map[string]any) protocol.Request {
	node := workflow.NodeByID(nodeID)

	config := map[string]any{}
	if node != nil {
		for k, v := range node.Data {
			config[k] = v
		}
	}

	if vars == nil {
		vars = map[string]any{}
	}

	return protocol.Request{
		Node:      node,
		Config:    config,
		Variables: vars,
		Execution: &models.Execution{
			ID:         "exec-test",
			WorkflowID: workflow.ID,
			Status:     models.ExecutionRunning,
			Context:    vars,
		},
		Workflow: workflow,
		Logger:   slog.Default(),
	}
}
