package engine

import (
	"database/sql"

	json "github.com/goccy/go-json"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

// LogRecorder writes one execution log row per visited node. Every write goes
// straight to storage so a crash leaves a consistent partial trail.
type LogRecorder struct {
	repo  ExecutionLogRepo
	clock core.Clock
}

func NewLogRecorder(repo ExecutionLogRepo, clock core.Clock) *LogRecorder {
	return &LogRecorder{repo: repo, clock: clock}
}

// Start appends a Running row for the node before its executor is invoked.
func (r *LogRecorder) Start(executionID int64, node *domain.Node, input any) (*domain.ExecutionLog, error) {
	entry := &domain.ExecutionLog{
		ExecutionID: executionID,
		NodeID:      node.NodeID,
		NodeType:    node.NodeType,
		Status:      domain.ExecutionLogStatusRunning,
		InputData:   jsonText(input),
		Started:     r.clock.Now().UTC(),
	}
	if _, err := r.repo.Save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *LogRecorder) Complete(entry *domain.ExecutionLog, output any) error {
	entry.Status = domain.ExecutionLogStatusCompleted
	entry.OutputData = jsonText(output)
	entry.Completed = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	return r.repo.Finish(entry)
}

func (r *LogRecorder) Fail(entry *domain.ExecutionLog, cause error) error {
	entry.Status = domain.ExecutionLogStatusFailed
	entry.ErrorMessage = sql.NullString{String: cause.Error(), Valid: true}
	entry.Completed = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	return r.repo.Finish(entry)
}

func jsonText(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
