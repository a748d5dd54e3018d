package repository

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const EXECUTION_COLUMNS = ` id, workflow_id, user_id, status, input_data, context_snapshot, error_message, created, started, completed `

const defaultSearchLimit = 50

type ExecutionRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewExecutionRepository(db *sql.DB, clock core.Clock) *ExecutionRepository {
	return &ExecutionRepository{db: db, clock: clock}
}

// Save inserts a new execution and returns its generated id.
func (r *ExecutionRepository) Save(e *domain.Execution) (int64, error) {
	if e.Created.IsZero() {
		e.Created = r.clock.Now().UTC()
	}
	base := `INSERT INTO workflow_executions (workflow_id, user_id, status, input_data, context_snapshot, error_message, created, started, completed)
		VALUES (` + placeholders(1, 9) + `)`
	id, err := insertReturningID(r.db, base,
		e.WorkflowID,
		e.UserID,
		string(e.Status),
		e.InputData,
		e.ContextSnapshot,
		e.ErrorMessage,
		formatDateInDatabase(e.Created),
		formatDateInDatabaseNull(e.Started),
		formatDateInDatabaseNull(e.Completed),
	)
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// FindByID returns (nil, nil) if the execution does not exist.
func (r *ExecutionRepository) FindByID(id int64) (*domain.Execution, error) {
	query := `SELECT ` + EXECUTION_COLUMNS + ` FROM workflow_executions WHERE id = ` + placeholder(1)
	e, err := scanExecution(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// MarkRunning moves a Pending execution to Running. It returns false when the
// execution was no longer Pending, so the transition happens at most once.
func (r *ExecutionRepository) MarkRunning(id int64, started time.Time) (bool, error) {
	query := `UPDATE workflow_executions
		SET status = ` + placeholder(1) + `, started = ` + placeholder(2) + `
		WHERE id = ` + placeholder(3) + ` AND status = ` + placeholder(4)
	res, err := r.db.Exec(query, string(domain.ExecutionStatusRunning), formatDateInDatabase(started), id, string(domain.ExecutionStatusPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Finish moves a Running execution to a terminal status, storing the error and context snapshot.
// It returns false when the execution was not Running.
func (r *ExecutionRepository) Finish(id int64, status domain.ExecutionStatus, completed time.Time, errorMessage string, contextSnapshot string) (bool, error) {
	query := `UPDATE workflow_executions
		SET status = ` + placeholder(1) + `, completed = ` + placeholder(2) + `, error_message = ` + placeholder(3) + `, context_snapshot = ` + placeholder(4) + `
		WHERE id = ` + placeholder(5) + ` AND status = ` + placeholder(6)
	res, err := r.db.Exec(query,
		string(status),
		formatDateInDatabase(completed),
		nullString(errorMessage),
		nullString(contextSnapshot),
		id,
		string(domain.ExecutionStatusRunning),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FailInterrupted marks every Pending or Running execution as Failed. It is used on
// engine start, when no run from a previous process can still be alive.
func (r *ExecutionRepository) FailInterrupted(message string, at time.Time) (int64, error) {
	query := `UPDATE workflow_executions
		SET status = ` + placeholder(1) + `, completed = ` + placeholder(2) + `, error_message = ` + placeholder(3) + `
		WHERE status IN (` + placeholder(4) + `, ` + placeholder(5) + `)`
	res, err := r.db.Exec(query,
		string(domain.ExecutionStatusFailed),
		formatDateInDatabase(at),
		message,
		string(domain.ExecutionStatusPending),
		string(domain.ExecutionStatusRunning),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindByStatus returns executions in the given status, newest first.
func (r *ExecutionRepository) FindByStatus(status domain.ExecutionStatus) (*[]domain.Execution, error) {
	return r.Search(models.SearchExecutionsRequest{Status: string(status), Limit: 1000})
}

func (r *ExecutionRepository) Search(req models.SearchExecutionsRequest) (*[]domain.Execution, error) {
	where, args := buildExecutionWhereClause(req)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + EXECUTION_COLUMNS + ` FROM workflow_executions` + where +
		` ORDER BY created DESC, id DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	slog.Debug("Searching executions", "query", query, "args", args)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executions := make([]domain.Execution, 0)
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &executions, nil
}

func buildExecutionWhereClause(req models.SearchExecutionsRequest) (string, []any) {
	var conditions []string
	var args []any
	if req.WorkflowID != 0 {
		args = append(args, req.WorkflowID)
		conditions = append(conditions, "workflow_id = "+placeholder(len(args)))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		conditions = append(conditions, "status = "+placeholder(len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanExecution(row rowScanner) (*domain.Execution, error) {
	var e domain.Execution
	var status string
	if err := row.Scan(
		&e.ID,
		&e.WorkflowID,
		&e.UserID,
		&status,
		&e.InputData,
		&e.ContextSnapshot,
		&e.ErrorMessage,
		&e.Created,
		&e.Started,
		&e.Completed,
	); err != nil {
		return nil, err
	}
	e.Status = domain.ExecutionStatus(status)
	e.Created = utc(e.Created)
	e.Started = utcNull(e.Started)
	e.Completed = utcNull(e.Completed)
	return &e, nil
}
