package models

import (
	"encoding/json"
	"time"
)

type ScheduleRequest struct {
	WorkflowID     int64           `json:"workflowId"`
	CronExpression string          `json:"cronExpression"`
	IsActive       *bool           `json:"isActive,omitempty"`
	Parameters     json.RawMessage `json:"parameters,omitempty"`
}

type ScheduleApiResponse struct {
	ID             int64           `json:"id"`
	WorkflowID     int64           `json:"workflowId"`
	CronExpression string          `json:"cronExpression"`
	IsActive       bool            `json:"isActive"`
	Parameters     json.RawMessage `json:"parameters,omitempty"`
	LastRunAt      *time.Time      `json:"lastRunAt,omitempty"`
	NextRunAt      *time.Time      `json:"nextRunAt,omitempty"`
	Created        time.Time       `json:"created"`
	Modified       time.Time       `json:"modified"`
}
