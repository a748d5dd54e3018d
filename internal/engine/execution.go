package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const cancelledMessage = "execution cancelled"

// runExecution drives one admitted execution from Pending to a terminal status.
func (e *WorkflowEngine) runExecution(j *job) {
	e.running.Add(1)
	defer e.running.Add(-1)

	id := j.execution.ID
	started, err := e.ExecutionRepo.MarkRunning(id, e.clock.Now().UTC())
	if err != nil {
		slog.Error("Failed to mark execution running", "executionId", id, "error", err)
		return
	}
	if !started {
		slog.Warn("Execution is no longer pending, skipping", "executionId", id)
		return
	}

	var ectx *core.ExecutionContext
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Execution panicked", "executionId", id, "panic", r)
			e.finish(j, ectx, fmt.Errorf("panic: %v", r))
		}
	}()

	ectx, err = core.NewExecutionContext(id, j.workflow.ID, j.input)
	if err != nil {
		e.finish(j, nil, err)
		return
	}
	if e.opts.ValidateWorkflows {
		if err := ValidateWorkflow(j.workflow); err != nil {
			e.finish(j, ectx, err)
			return
		}
	}
	e.finish(j, ectx, e.traverse(j, ectx))
}

// finish classifies the outcome and writes the terminal status with the final context.
// A stop that lands after the last node still ends the run Cancelled.
func (e *WorkflowEngine) finish(j *job, ectx *core.ExecutionContext, runErr error) {
	status := domain.ExecutionStatusCompleted
	message := ""
	switch {
	case runErr == nil && j.ctx.Err() == nil:
	case j.ctx.Err() != nil:
		status = domain.ExecutionStatusCancelled
		message = cancelledMessage
	default:
		status = domain.ExecutionStatusFailed
		message = runErr.Error()
	}

	snapshot := ""
	if ectx != nil {
		snapshot = ectx.String()
	}
	updated, err := e.ExecutionRepo.Finish(j.execution.ID, status, e.clock.Now().UTC(), message, snapshot)
	if err != nil {
		slog.Error("Failed to finish execution", "executionId", j.execution.ID, "status", status, "error", err)
		return
	}
	if !updated {
		slog.Warn("Execution was already finished", "executionId", j.execution.ID)
		return
	}
	if status == domain.ExecutionStatusCompleted {
		slog.Info("Execution completed", "executionId", j.execution.ID, "workflowId", j.workflow.ID)
	} else {
		slog.Warn("Execution ended", "executionId", j.execution.ID, "status", status, "error", message)
	}
}

// traverse walks the graph depth first from the Start node. Each node runs at
// most once per execution even when several paths reach it.
func (e *WorkflowEngine) traverse(j *job, ectx *core.ExecutionContext) error {
	g := newGraph(j.workflow)
	start := g.start()
	if start == nil {
		return ErrNoStartNode
	}

	visited := make(map[string]bool, len(j.workflow.Nodes))
	stack := []*domain.Node{start}
	for len(stack) > 0 {
		if err := j.ctx.Err(); err != nil {
			return err
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node.NodeID] {
			continue
		}
		visited[node.NodeID] = true

		if err := e.executeNode(j, node, ectx); err != nil {
			return err
		}

		next := g.successors(node, ectx)
		for i := len(next) - 1; i >= 0; i-- {
			if !visited[next[i].NodeID] {
				stack = append(stack, next[i])
			}
		}
	}
	return nil
}

func (e *WorkflowEngine) executeNode(j *job, node *domain.Node, ectx *core.ExecutionContext) error {
	entry, err := e.recorder.Start(j.execution.ID, node, ectx.PreviousOutput())
	if err != nil {
		return fmt.Errorf("record start of node %s: %w", node.NodeID, err)
	}
	slog.Debug("Executing node", "executionId", j.execution.ID, "nodeId", node.NodeID, "nodeType", node.NodeType)

	var output any
	if !node.NodeType.IsStructural() {
		output, err = e.invoke(j, node, ectx)
	}
	if err != nil {
		if recErr := e.recorder.Fail(entry, err); recErr != nil {
			return errors.Join(&NodeError{NodeID: node.NodeID, NodeType: node.NodeType, Err: err}, recErr)
		}
		return &NodeError{NodeID: node.NodeID, NodeType: node.NodeType, Err: err}
	}
	if err := e.recorder.Complete(entry, output); err != nil {
		return fmt.Errorf("record completion of node %s: %w", node.NodeID, err)
	}
	return nil
}

// invoke runs the executor and stores its normalized result as previousOutput.
func (e *WorkflowEngine) invoke(j *job, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	executor, ok := e.registry.Lookup(node.NodeType)
	if !ok {
		return nil, fmt.Errorf("no executor registered for node type %q", node.NodeType)
	}
	result, err := executor.Execute(j.ctx, node, ectx)
	if err != nil {
		return nil, err
	}
	if err := ectx.SetPreviousOutput(result); err != nil {
		return nil, fmt.Errorf("node result is not serializable: %w", err)
	}
	return ectx.PreviousOutput(), nil
}
