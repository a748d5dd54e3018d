package engine

import (
	"context"
	"log/slog"
)

// Worker takes admitted executions off the queue until ctx is cancelled.
func Worker(ctx context.Context, id int, e *WorkflowEngine, queue <-chan *job) {
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Worker stopping", "worker_id", id)
			return
		case j := <-queue:
			slog.Info("Worker starting execution", "worker_id", id, "executionId", j.execution.ID)
			e.runExecution(j)
			e.release(j)
			slog.Info("Worker finished execution", "worker_id", id, "executionId", j.execution.ID)
		}
	}
}
