package repository

import (
	"database/sql"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const EXECUTION_LOG_COLUMNS = ` id, execution_id, node_id, node_type, status, input_data, output_data, error_message, started, completed `

type ExecutionLogRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewExecutionLogRepository(db *sql.DB, clock core.Clock) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db, clock: clock}
}

// Save appends a log row, normally in the Running state, and returns its id.
func (r *ExecutionLogRepository) Save(l *domain.ExecutionLog) (int64, error) {
	if l.Started.IsZero() {
		l.Started = r.clock.Now().UTC()
	}
	base := `INSERT INTO execution_logs (execution_id, node_id, node_type, status, input_data, output_data, error_message, started, completed)
		VALUES (` + placeholders(1, 9) + `)`
	id, err := insertReturningID(r.db, base,
		l.ExecutionID,
		l.NodeID,
		string(l.NodeType),
		string(l.Status),
		l.InputData,
		l.OutputData,
		l.ErrorMessage,
		formatDateInDatabase(l.Started),
		formatDateInDatabaseNull(l.Completed),
	)
	if err != nil {
		return 0, err
	}
	l.ID = id
	return id, nil
}

// Finish writes the final state of a Running log row. Rows already finished are left untouched.
func (r *ExecutionLogRepository) Finish(l *domain.ExecutionLog) error {
	query := `UPDATE execution_logs
		SET status = ` + placeholder(1) + `, output_data = ` + placeholder(2) + `, error_message = ` + placeholder(3) + `, completed = ` + placeholder(4) + `
		WHERE id = ` + placeholder(5) + ` AND status = ` + placeholder(6)
	_, err := r.db.Exec(query,
		string(l.Status),
		l.OutputData,
		l.ErrorMessage,
		formatDateInDatabaseNull(l.Completed),
		l.ID,
		string(domain.ExecutionLogStatusRunning),
	)
	return err
}

// FindAllByExecutionID returns the log trail of an execution in start order.
func (r *ExecutionLogRepository) FindAllByExecutionID(executionID int64) (*[]domain.ExecutionLog, error) {
	query := `SELECT ` + EXECUTION_LOG_COLUMNS + ` FROM execution_logs
		WHERE execution_id = ` + placeholder(1) + `
		ORDER BY started ASC, id ASC`

	rows, err := r.db.Query(query, executionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.ExecutionLog, 0)
	for rows.Next() {
		var l domain.ExecutionLog
		var nodeType, status string
		if err := rows.Scan(
			&l.ID,
			&l.ExecutionID,
			&l.NodeID,
			&nodeType,
			&status,
			&l.InputData,
			&l.OutputData,
			&l.ErrorMessage,
			&l.Started,
			&l.Completed,
		); err != nil {
			return nil, err
		}
		l.NodeType = domain.NodeType(nodeType)
		l.Status = domain.ExecutionLogStatus(status)
		l.Started = utc(l.Started)
		l.Completed = utcNull(l.Completed)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &logs, nil
}
