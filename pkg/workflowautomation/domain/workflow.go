package domain

import (
	"database/sql"
	"time"
)

// Condition edge handles.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

type Workflow struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	UserID      sql.NullInt64 `json:"userId"`
	IsActive    bool          `json:"isActive"`
	Version     int           `json:"version"`
	Created     time.Time     `json:"created"`
	Modified    time.Time     `json:"modified"`
	Nodes       []Node        `json:"nodes"`
	Edges       []Edge        `json:"edges"`
}

type Node struct {
	ID            int64    `json:"id"`
	WorkflowID    int64    `json:"workflowId"`
	NodeID        string   `json:"nodeId"`
	NodeType      NodeType `json:"nodeType"`
	Label         string   `json:"label"`
	PositionX     float64  `json:"positionX"`
	PositionY     float64  `json:"positionY"`
	Configuration string   `json:"configuration"`
}

type Edge struct {
	ID           int64          `json:"id"`
	WorkflowID   int64          `json:"workflowId"`
	EdgeID       string         `json:"edgeId"`
	SourceNodeID string         `json:"sourceNodeId"`
	TargetNodeID string         `json:"targetNodeId"`
	SourceHandle sql.NullString `json:"sourceHandle"`
	TargetHandle sql.NullString `json:"targetHandle"`
}

// FindNode returns the node with the given nodeId or nil.
func (w *Workflow) FindNode(nodeID string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].NodeID == nodeID {
			return &w.Nodes[i]
		}
	}
	return nil
}
