// Package workflow runs workflow graphs. A run walks the graph depth-first from its
// start node, one node at a time, persisting the execution record after every step.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/dukex/classflow/pkg/eventbus"
	"github.com/dukex/classflow/pkg/events"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/otelhelper"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/protocol"
	"github.com/dukex/classflow/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultMaxVisits = 10000

var (
	ErrWorkflowNotFound  = persistence.ErrWorkflowNotFound
	ErrWorkflowInactive  = errors.New("workflow is not active")
	ErrInvalidDefinition = errors.New("invalid workflow definition")
	ErrNoStartNode       = errors.New("No start node found") //nolint:staticcheck
	ErrMaxVisitsExceeded = errors.New("maximum node visits exceeded")
	ErrExecutorPanic     = errors.New("node executor panicked")
)

// NodeError is the failure of a single node, which ends the run.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

type Option func(*Executor)

// WithEventBus publishes lifecycle events for every run.
func WithEventBus(publisher eventbus.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithMaxVisits bounds the number of node visits of a single run. Values below 1 keep the default.
func WithMaxVisits(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxVisits = n
		}
	}
}

// Executor starts workflow runs and tracks the ones still walking in this process.
type Executor struct {
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	registry   *registry.Registry
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger
	maxVisits  int
	now        func() time.Time

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewExecutor(store persistence.Persistence, reg *registry.Registry, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		workflows:  store.WorkflowRepository(),
		executions: store.ExecutionRepository(),
		registry:   reg,
		tracer:     otelhelper.NoopTracer(),
		logger:     logger.With("module", "workflow_executor"),
		maxVisits:  DefaultMaxVisits,
		now:        func() time.Time { return time.Now().UTC() },
		running:    make(map[string]context.CancelFunc),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// run is the state of one walk. It is only touched by the goroutine driving the walk.
type run struct {
	execution *models.Execution
	workflow  *models.Workflow
	logger    *slog.Logger
	visits    int
}

// Execute creates a running execution record for workflowID and walks the graph in the
// background. The returned record is a snapshot taken before the first node runs.
func (e *Executor) Execute(ctx context.Context, workflowID, triggeredBy string, initial map[string]any) (*models.Execution, error) {
	wf, err := e.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", workflowID, err)
	}

	if wf == nil {
		return nil, persistence.NewWorkflowError("execute", workflowID, ErrWorkflowNotFound)
	}

	if !wf.IsActive {
		return nil, persistence.NewWorkflowError("execute", workflowID, ErrWorkflowInactive)
	}

	if err := wf.Validate(); err != nil {
		return nil, persistence.NewWorkflowError("execute", workflowID, fmt.Errorf("%w: %w", ErrInvalidDefinition, err))
	}

	vars := models.CopyContext(initial)
	if vars == nil {
		vars = make(map[string]any)
	}

	execution := &models.Execution{
		ID:            uuid.New().String(),
		WorkflowID:    wf.ID,
		Status:        models.ExecutionPending,
		Context:       vars,
		ExecutedNodes: []models.ExecutedNode{},
		TriggeredBy:   triggeredBy,
		StartedAt:     e.now(),
	}

	logger := e.logger.With("execution_id", execution.ID, "workflow_id", wf.ID)

	execution.Status = models.ExecutionRunning
	if err := e.executions.Save(ctx, execution); err != nil {
		return nil, persistence.NewExecutionError("create", execution.ID, err)
	}

	logger.Info("Execution started", "triggered_by", triggeredBy)

	started := events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID),
		ExecutionID: execution.ID,
		TriggeredBy: triggeredBy,
	}
	e.publish(ctx, logger, wf.ID, started)

	snapshot := execution.Snapshot()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	e.mu.Lock()
	e.running[execution.ID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		defer e.forget(execution.ID, cancel)

		e.walk(runCtx, &run{execution: execution, workflow: wf, logger: logger})
	}()

	return snapshot, nil
}

// Cancel signals the walk of executionID. It reports false when that run is not in progress here.
func (e *Executor) Cancel(executionID string) bool {
	e.mu.Lock()
	cancel, ok := e.running[executionID]
	e.mu.Unlock()

	if ok {
		cancel()
	}

	return ok
}

// Running reports whether executionID is being walked by this process.
func (e *Executor) Running(executionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.running[executionID]

	return ok
}

// Wait blocks until every run started by e has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) forget(executionID string, cancel context.CancelFunc) {
	e.mu.Lock()
	delete(e.running, executionID)
	e.mu.Unlock()

	cancel()
}

func (e *Executor) walk(ctx context.Context, r *run) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, r.workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, r.workflow.Name),
		attribute.String(otelhelper.ExecutionIDKey, r.execution.ID),
		attribute.String(otelhelper.TriggeredByKey, r.execution.TriggeredBy),
	)
	defer span.End()

	var err error

	if start := e.startNode(r.workflow, r.execution.TriggeredBy); start == nil {
		err = ErrNoStartNode
	} else {
		err = e.visit(ctx, r, start.ID)
	}

	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		otelhelper.SetError(span, err, attribute.String(otelhelper.FailedNodeKey, nodeErr.NodeID))
	} else {
		otelhelper.SetError(span, err)
	}

	e.finish(context.WithoutCancel(ctx), r, err)
}

func (e *Executor) visit(ctx context.Context, r *run, nodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	node := r.workflow.NodeByID(nodeID)
	if node == nil {
		r.logger.Warn("Next node not found in workflow, skipping", "node_id", nodeID)

		return nil
	}

	r.visits++
	if r.visits > e.maxVisits {
		return &NodeError{NodeID: nodeID, Err: ErrMaxVisitsExceeded}
	}

	next, err := e.runNode(ctx, r, node)
	if err != nil {
		return err
	}

	for _, id := range next {
		if err := e.visit(ctx, r, id); err != nil {
			return err
		}
	}

	return nil
}

// runNode executes one node and returns the ids to visit next.
func (e *Executor) runNode(ctx context.Context, r *run, node *models.Node) ([]string, error) {
	nodeType := node.Data.NodeType()
	logger := r.logger.With("node_id", node.ID, "node_type", nodeType)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.ExecutionIDKey, r.execution.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, nodeType),
	)
	defer span.End()

	r.execution.ExecutedNodes = append(r.execution.ExecutedNodes, models.ExecutedNode{
		NodeID:    node.ID,
		NodeType:  nodeType,
		Status:    models.NodeRunning,
		Timestamp: e.now(),
	})
	index := len(r.execution.ExecutedNodes) - 1
	e.save(ctx, r)

	logger.Debug("Executing node")

	result, err := e.invoke(ctx, r, node, logger)
	if err == nil && !result.Success {
		err = errors.New(result.Error)
		if result.Error == "" {
			err = errors.New("node execution failed")
		}
	}

	entry := &r.execution.ExecutedNodes[index]

	if err != nil {
		entry.Status = models.NodeFailed
		entry.Error = err.Error()

		otelhelper.SetError(span, err)
		logger.Error("Node failed", "error", err)
		e.publishNode(ctx, r, entry)

		return nil, &NodeError{NodeID: node.ID, Err: err}
	}

	maps.Copy(r.execution.Context, result.Output)

	entry.Status = models.NodeCompleted
	entry.Result = models.CopyContext(result.Output)
	e.save(ctx, r)
	e.publishNode(ctx, r, entry)

	if result.Override {
		return result.NextNodes, nil
	}

	return r.workflow.Successors(node.ID), nil
}

func (e *Executor) invoke(ctx context.Context, r *run, node *models.Node, logger *slog.Logger) (result *protocol.Result, err error) {
	executor, ok := e.registry.Get(node.Data.NodeType())
	if !ok {
		logger.Warn("No executor registered for node type, skipping")

		return protocol.Success(map[string]any{"message": "skipped"}), nil
	}

	config, err := e.registry.Config(node)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrExecutorPanic, p)
		}
	}()

	result, err = executor.Execute(ctx, protocol.Request{
		Node:      node,
		Config:    config,
		Variables: r.execution.Context,
		Execution: r.execution,
		Workflow:  r.workflow,
		Logger:    logger,
	})
	if err == nil && result == nil {
		result = protocol.Success(nil)
	}

	return result, err
}

func (e *Executor) finish(ctx context.Context, r *run, err error) {
	execution := r.execution
	completedAt := e.now()
	execution.CompletedAt = &completedAt

	var event eventbus.Event

	switch {
	case err == nil:
		execution.Status = models.ExecutionCompleted
		event = events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, r.workflow.ID),
			ExecutionID:   execution.ID,
			Duration:      completedAt.Sub(execution.StartedAt),
			NodesExecuted: len(execution.ExecutedNodes),
		}

		r.logger.Info("Execution completed", "nodes_executed", len(execution.ExecutedNodes))
	case errors.Is(err, context.Canceled):
		execution.Status = models.ExecutionCancelled
		event = events.ExecutionCancelled{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCancelledEvent, r.workflow.ID),
			ExecutionID: execution.ID,
		}

		r.logger.Info("Execution cancelled")
	default:
		execution.Status = models.ExecutionFailed
		execution.ErrorMessage = err.Error()

		failed := events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, r.workflow.ID),
			ExecutionID: execution.ID,
			Error:       err.Error(),
		}

		var nodeErr *NodeError
		if errors.As(err, &nodeErr) {
			execution.ErrorMessage = nodeErr.Err.Error()
			failed.NodeID = nodeErr.NodeID
			failed.Error = execution.ErrorMessage
		}

		event = failed

		r.logger.Error("Execution failed", "error", execution.ErrorMessage)
	}

	e.save(ctx, r)
	e.publish(ctx, r.logger, r.workflow.ID, event)
}

// save persists the record. A failure is logged and the walk goes on with its in-memory state.
func (e *Executor) save(ctx context.Context, r *run) {
	if err := e.executions.Save(ctx, r.execution); err != nil {
		r.logger.Error("Failed to persist execution", "error", err)
	}
}

func (e *Executor) publishNode(ctx context.Context, r *run, entry *models.ExecutedNode) {
	e.publish(ctx, r.logger, r.workflow.ID, events.NodeExecuted{
		BaseEvent:   events.NewBaseEvent(events.NodeExecutedEvent, r.workflow.ID),
		ExecutionID: r.execution.ID,
		NodeID:      entry.NodeID,
		NodeType:    entry.NodeType,
		Status:      string(entry.Status),
		Error:       entry.Error,
	})
}

func (e *Executor) publish(ctx context.Context, logger *slog.Logger, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
