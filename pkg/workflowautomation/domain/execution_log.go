package domain

import (
	"database/sql"
	"time"
)

type ExecutionLogStatus string

const (
	ExecutionLogStatusRunning   ExecutionLogStatus = "Running"
	ExecutionLogStatusCompleted ExecutionLogStatus = "Completed"
	ExecutionLogStatusFailed    ExecutionLogStatus = "Failed"
)

// ExecutionLog is one node execution attempt within an Execution.
type ExecutionLog struct {
	ID           int64              `json:"id"`
	ExecutionID  int64              `json:"executionId"`
	NodeID       string             `json:"nodeId"`
	NodeType     NodeType           `json:"nodeType"`
	Status       ExecutionLogStatus `json:"status"`
	InputData    sql.NullString     `json:"inputData"`
	OutputData   sql.NullString     `json:"outputData"`
	ErrorMessage sql.NullString     `json:"errorMessage"`
	Started      time.Time          `json:"started"`
	Completed    sql.NullTime       `json:"completed"`
}

// Duration is zero while the node is still running.
func (l *ExecutionLog) Duration() time.Duration {
	if !l.Completed.Valid {
		return 0
	}
	return l.Completed.Time.Sub(l.Started)
}
