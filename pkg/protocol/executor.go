// Package protocol defines the contract between the execution engine and node executors.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dukex/classflow/pkg/models"
)

// NodeExecutor runs one node type. Implementations are registered once at startup.
type NodeExecutor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// Definer is implemented by executors that describe themselves to the graph editor.
type Definer interface {
	Definition() models.NodeDefinition
}

// Request carries everything an executor may read.
//
// Variables is the run's live context. Executors may read and write it; writes
// are visible to every node visited afterwards.
type Request struct {
	Node      *models.Node
	Config    map[string]any
	Variables map[string]any
	Execution *models.Execution
	Workflow  *models.Workflow
	Logger    *slog.Logger
}

// Result is what an executor hands back to the engine.
//
// When Override is set, NextNodes replaces the graph successors; an empty
// NextNodes then ends the branch.
type Result struct {
	Success   bool
	Output    map[string]any
	NextNodes []string
	Override  bool
	Error     string
}

// Success returns a successful result that follows every outgoing edge.
func Success(output map[string]any) *Result {
	return &Result{Success: true, Output: output}
}

// Route returns a successful result that only visits next.
func Route(output map[string]any, next []string) *Result {
	if next == nil {
		next = []string{}
	}

	return &Result{Success: true, Output: output, NextNodes: next, Override: true}
}

// Failure returns an unsuccessful result, which aborts the run.
func Failure(message string) *Result {
	return &Result{Success: false, Error: message}
}

// Log returns the request logger, or the default logger when none was supplied.
func (r Request) Log() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}
