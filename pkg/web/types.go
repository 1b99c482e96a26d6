// Package web provides the HTTP API for managing and running workflows.
package web

import "github.com/dukex/classflow/pkg/models"

// WorkflowListResponse is returned by GET /workflows.
type WorkflowListResponse struct {
	Workflows  []*models.Workflow `json:"workflows"`
	TotalCount int                `json:"totalCount"`
}

// ExecutionListResponse is returned by GET /executions.
type ExecutionListResponse struct {
	Executions []*models.Execution `json:"executions"`
	TotalCount int                 `json:"totalCount"`
}

// EventResponse lists the runs started by a domain event.
type EventResponse struct {
	Event        string   `json:"event"`
	ExecutionIDs []string `json:"executionIds"`
}

// NodeTypesResponse lists the node types available to the editor.
type NodeTypesResponse struct {
	NodeTypes []models.NodeDefinition `json:"nodeTypes"`
}
