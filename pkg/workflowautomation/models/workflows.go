package models

import (
	"encoding/json"
	"time"
)

// SaveWorkflowRequest is the payload for creating or replacing a workflow definition.
type SaveWorkflowRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsActive    *bool         `json:"isActive,omitempty"`
	Nodes       []NodeRequest `json:"nodes"`
	Edges       []EdgeRequest `json:"edges"`
}

type NodeRequest struct {
	NodeID        string          `json:"nodeId"`
	NodeType      string          `json:"nodeType"`
	Label         string          `json:"label"`
	PositionX     float64         `json:"positionX"`
	PositionY     float64         `json:"positionY"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

type EdgeRequest struct {
	EdgeID       string `json:"edgeId"`
	SourceNodeID string `json:"sourceNodeId"`
	TargetNodeID string `json:"targetNodeId"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

type CreateWorkflowResponse struct {
	ID int64 `json:"id"`
}

// WorkflowApiResponse represents the API response for a workflow definition.
type WorkflowApiResponse struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsActive    bool          `json:"isActive"`
	Version     int           `json:"version"`
	Created     time.Time     `json:"created"`
	Modified    time.Time     `json:"modified"`
	Nodes       []NodeRequest `json:"nodes"`
	Edges       []EdgeRequest `json:"edges"`
}

type ValidateWorkflowResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}
