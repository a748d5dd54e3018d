package domain

import (
	"database/sql"
	"time"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "Pending"
	ExecutionStatusRunning   ExecutionStatus = "Running"
	ExecutionStatusCompleted ExecutionStatus = "Completed"
	ExecutionStatusFailed    ExecutionStatus = "Failed"
	ExecutionStatusCancelled ExecutionStatus = "Cancelled"
)

func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

type Execution struct {
	ID              int64           `json:"id"`
	WorkflowID      int64           `json:"workflowId"`
	UserID          sql.NullInt64   `json:"userId"`
	Status          ExecutionStatus `json:"status"`
	InputData       string          `json:"inputData"`
	ContextSnapshot sql.NullString  `json:"contextSnapshot"`
	ErrorMessage    sql.NullString  `json:"errorMessage"`
	Created         time.Time       `json:"created"`
	Started         sql.NullTime    `json:"started"`
	Completed       sql.NullTime    `json:"completed"`
}

func (e *Execution) IsFinished() bool {
	return e.Status.IsTerminal()
}
