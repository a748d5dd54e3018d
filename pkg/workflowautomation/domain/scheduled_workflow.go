package domain

import (
	"database/sql"
	"time"
)

type ScheduledWorkflow struct {
	ID             int64          `json:"id"`
	WorkflowID     int64          `json:"workflowId"`
	CronExpression string         `json:"cronExpression"`
	IsActive       bool           `json:"isActive"`
	Parameters     sql.NullString `json:"parameters"`
	LastRunAt      sql.NullTime   `json:"lastRunAt"`
	NextRunAt      sql.NullTime   `json:"nextRunAt"`
	Created        time.Time      `json:"created"`
	Modified       time.Time      `json:"modified"`
}
