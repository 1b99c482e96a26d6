// Package models defines the core domain models for graph-based workflow automation.
package models

import (
	"errors"
	"fmt"
	"time"
)

// TriggerType identifies how a workflow run is started.
type TriggerType string

const (
	TriggerManual   TriggerType = "manual"
	TriggerSchedule TriggerType = "schedule"
	TriggerEvent    TriggerType = "event"
)

// Node types written by the graph editor.
const (
	NodeTypeCustom  = "custom"
	NodeTypeTrigger = "trigger"
)

var (
	ErrDuplicateNodeID    = errors.New("duplicate node id")
	ErrDanglingEdge       = errors.New("edge references unknown node")
	ErrMissingCron        = errors.New("schedule trigger requires a cron expression")
	ErrMissingEventName   = errors.New("event trigger requires an event name")
	ErrMissingNodeType    = errors.New("node data requires a nodeType")
	ErrUnknownTriggerType = errors.New("unknown trigger type")
)

// Workflow is the persisted graph executed by the engine.
type Workflow struct {
	ID          string    `json:"id"                    yaml:"id"`
	Name        string    `json:"name"                  yaml:"name"                  validate:"required,min=1"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    bool      `json:"isActive"              yaml:"isActive"`
	IsTemplate  bool      `json:"isTemplate"            yaml:"isTemplate"`
	Category    string    `json:"category,omitempty"    yaml:"category,omitempty"`
	Nodes       []*Node   `json:"nodes"                 yaml:"nodes"                 validate:"dive"`
	Edges       []*Edge   `json:"edges"                 yaml:"edges"                 validate:"dive"`
	Trigger     Trigger   `json:"trigger"               yaml:"trigger"`
	CreatedAt   time.Time `json:"createdAt"             yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"             yaml:"updatedAt,omitempty"`
}

// Node is a typed unit of work. The executor is selected by Data.NodeType().
type Node struct {
	ID       string    `json:"id"                 yaml:"id"   validate:"required"`
	Type     string    `json:"type"               yaml:"type"`
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
	Data     NodeData  `json:"data"               yaml:"data"`
}

// Position is the editor canvas location of a node. The engine ignores it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData holds the node type plus its free-form configuration fields.
type NodeData map[string]any

func (d NodeData) NodeType() string {
	s, _ := d["nodeType"].(string)

	return s
}

func (d NodeData) Category() string {
	s, _ := d["category"].(string)

	return s
}

func (d NodeData) Label() string {
	s, _ := d["label"].(string)

	return s
}

// Edge connects two nodes. SourceHandle selects among a node's outgoing paths.
type Edge struct {
	ID           string `json:"id"                     yaml:"id"`
	Source       string `json:"source"                 yaml:"source"       validate:"required"`
	Target       string `json:"target"                 yaml:"target"       validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

// Trigger describes what starts a workflow.
type Trigger struct {
	Type   TriggerType    `json:"type"             yaml:"type"             validate:"omitempty,oneof=manual schedule event"`
	Config *TriggerConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

type TriggerConfig struct {
	Cron     string `json:"cron,omitempty"     yaml:"cron,omitempty"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Event    string `json:"event,omitempty"    yaml:"event,omitempty"`
	// Schema is an optional JSON Schema the event payload must satisfy.
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// CronExpression returns the configured cron expression, or "" when none is set.
func (t Trigger) CronExpression() string {
	if t.Config == nil {
		return ""
	}

	return t.Config.Cron
}

// EventName returns the configured event name, or "" when none is set.
func (t Trigger) EventName() string {
	if t.Config == nil {
		return ""
	}

	return t.Config.Event
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node != nil && node.ID == id {
			return node
		}
	}

	return nil
}

// OutgoingEdges returns the edges whose source is nodeID, in definition order.
func (w *Workflow) OutgoingEdges(nodeID string) []*Edge {
	var edges []*Edge

	for _, edge := range w.Edges {
		if edge != nil && edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// Successors returns the targets of every outgoing edge of nodeID.
func (w *Workflow) Successors(nodeID string) []string {
	edges := w.OutgoingEdges(nodeID)

	targets := make([]string, 0, len(edges))
	for _, edge := range edges {
		targets = append(targets, edge.Target)
	}

	return targets
}

// TargetsByHandle returns the targets of outgoing edges of nodeID tagged with handle.
func (w *Workflow) TargetsByHandle(nodeID, handle string) []string {
	targets := []string{}

	for _, edge := range w.OutgoingEdges(nodeID) {
		if edge.SourceHandle == handle {
			targets = append(targets, edge.Target)
		}
	}

	return targets
}

// Validate checks the graph invariants that struct tags cannot express.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))

	for _, node := range w.Nodes {
		if node == nil {
			continue
		}

		if seen[node.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		seen[node.ID] = true

		if node.Data.NodeType() == "" && node.Type != NodeTypeTrigger {
			return fmt.Errorf("%w: node %s", ErrMissingNodeType, node.ID)
		}
	}

	for _, edge := range w.Edges {
		if edge == nil {
			continue
		}

		if !seen[edge.Source] {
			return fmt.Errorf("%w: edge %s source %s", ErrDanglingEdge, edge.ID, edge.Source)
		}

		if !seen[edge.Target] {
			return fmt.Errorf("%w: edge %s target %s", ErrDanglingEdge, edge.ID, edge.Target)
		}
	}

	switch w.Trigger.Type {
	case "", TriggerManual:
	case TriggerSchedule:
		if w.Trigger.CronExpression() == "" {
			return ErrMissingCron
		}
	case TriggerEvent:
		if w.Trigger.EventName() == "" {
			return ErrMissingEventName
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTriggerType, w.Trigger.Type)
	}

	return nil
}
