package models

import (
	"encoding/json"
	"time"
)

type StartExecutionRequest struct {
	WorkflowID int64           `json:"workflowId"`
	InputData  json.RawMessage `json:"inputData,omitempty"`
}

type StartExecutionResponse struct {
	ID int64 `json:"id"`
}

// SearchExecutionsRequest filters the execution list. Zero values are ignored.
type SearchExecutionsRequest struct {
	WorkflowID int64  `json:"workflowId"`
	Status     string `json:"status"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type ExecutionApiResponse struct {
	ID           int64           `json:"id"`
	WorkflowID   int64           `json:"workflowId"`
	UserID       int64           `json:"userId,omitempty"`
	Status       string          `json:"status"`
	InputData    json.RawMessage `json:"inputData,omitempty"`
	Context      json.RawMessage `json:"context,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Created      time.Time       `json:"created"`
	Started      *time.Time      `json:"started,omitempty"`
	Completed    *time.Time      `json:"completed,omitempty"`
}

type ExecutionLogApiResponse struct {
	ID           int64           `json:"id"`
	ExecutionID  int64           `json:"executionId"`
	NodeID       string          `json:"nodeId"`
	NodeType     string          `json:"nodeType"`
	Status       string          `json:"status"`
	InputData    json.RawMessage `json:"inputData,omitempty"`
	OutputData   json.RawMessage `json:"outputData,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Started      time.Time       `json:"started"`
	Completed    *time.Time      `json:"completed,omitempty"`
	DurationMs   int64           `json:"durationMs"`
}

// EngineStatsResponse reports worker pool saturation.
type EngineStatsResponse struct {
	PoolSize        int    `json:"poolSize"`
	QueueCapacity   int    `json:"queueCapacity"`
	Queued          int    `json:"queued"`
	Running         int64  `json:"running"`
	Admitted        int64  `json:"admitted"`
	Rejected        int64  `json:"rejected"`
	Finished        int64  `json:"finished"`
	AdmissionPolicy string `json:"admissionPolicy"`
}
