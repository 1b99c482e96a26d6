package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/persistence"
	json "github.com/goccy/go-json"
)

const executionColumns = `id, workflow_id, status, context, executed_nodes, triggered_by, started_at, completed_at, error_message`

// ExecutionRepository handles execution record database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save upserts the whole record.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	contextJSON, err := json.Marshal(execution.Context)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("failed to marshal context: %w", err))
	}

	nodesJSON, err := json.Marshal(nonNil(execution.ExecutedNodes))
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, fmt.Errorf("failed to marshal executed nodes: %w", err))
	}

	query := `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			context = EXCLUDED.context,
			executed_nodes = EXCLUDED.executed_nodes,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		string(execution.Status),
		contextJSON,
		nodesJSON,
		execution.TriggeredBy,
		execution.StartedAt,
		execution.CompletedAt,
		execution.ErrorMessage,
	)
	if err != nil {
		return persistence.NewExecutionError("Save", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+executionColumns+` FROM executions WHERE id = $1`, id)

	execution, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) List(ctx context.Context, opts persistence.ListExecutionsOptions) ([]*models.Execution, error) {
	var (
		conditions []string
		args       []any
	)

	if opts.WorkflowID != "" {
		args = append(args, opts.WorkflowID)
		conditions = append(conditions, fmt.Sprintf("workflow_id = $%d", len(args)))
	}

	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + executionColumns + ` FROM executions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	args = append(args, opts.EffectiveLimit())
	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistence.NewExecutionError("List", "", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, persistence.NewExecutionError("List", "", err)
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewExecutionError("List", "", err)
	}

	return executions, nil
}

func scanExecution(row scanner) (*models.Execution, error) {
	var (
		execution              models.Execution
		status                 string
		contextJSON, nodesJSON []byte
		completedAt            sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&status,
		&contextJSON,
		&nodesJSON,
		&execution.TriggeredBy,
		&execution.StartedAt,
		&completedAt,
		&execution.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionStatus(status)
	execution.StartedAt = execution.StartedAt.UTC()

	if completedAt.Valid {
		t := completedAt.Time.UTC()
		execution.CompletedAt = &t
	}

	if err := json.Unmarshal(contextJSON, &execution.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}

	if err := json.Unmarshal(nodesJSON, &execution.ExecutedNodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal executed nodes: %w", err)
	}

	return &execution, nil
}
