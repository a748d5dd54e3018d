package engine

import (
	"errors"
	"fmt"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

var (
	ErrWorkflowNotFound    = errors.New("workflow not found")
	ErrWorkflowInactive    = errors.New("workflow is not active")
	ErrInvalidInput        = errors.New("input data is not valid JSON")
	ErrQueueFull           = errors.New("execution queue is full")
	ErrEngineNotRunning    = errors.New("workflow engine is not running")
	ErrExecutionNotFound   = errors.New("execution not found")
	ErrExecutionNotRunning = errors.New("execution is not running")
	ErrNoStartNode         = errors.New("workflow has no start node")
)

// NodeError is the failure of a single node. It ends the whole execution.
type NodeError struct {
	NodeID   string
	NodeType domain.NodeType
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
