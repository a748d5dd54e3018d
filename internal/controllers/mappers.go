package controllers

import (
	"database/sql"
	stdjson "encoding/json"
	"time"

	json "github.com/goccy/go-json"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// rawJSON passes stored JSON text through unchanged. Text that is not valid
// JSON is returned as a JSON string.
func rawJSON(s sql.NullString) stdjson.RawMessage {
	if !s.Valid || s.String == "" {
		return nil
	}
	if json.Valid([]byte(s.String)) {
		return stdjson.RawMessage(s.String)
	}
	b, _ := json.Marshal(s.String)
	return b
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func mapExecution(e *domain.Execution) models.ExecutionApiResponse {
	return models.ExecutionApiResponse{
		ID:           e.ID,
		WorkflowID:   e.WorkflowID,
		UserID:       e.UserID.Int64,
		Status:       string(e.Status),
		InputData:    rawJSON(sql.NullString{String: e.InputData, Valid: true}),
		Context:      rawJSON(e.ContextSnapshot),
		ErrorMessage: e.ErrorMessage.String,
		Created:      e.Created,
		Started:      timePtr(e.Started),
		Completed:    timePtr(e.Completed),
	}
}

func mapExecutions(executions *[]domain.Execution) []models.ExecutionApiResponse {
	out := make([]models.ExecutionApiResponse, 0)
	if executions == nil {
		return out
	}
	for i := range *executions {
		out = append(out, mapExecution(&(*executions)[i]))
	}
	return out
}

func mapExecutionLogs(logs *[]domain.ExecutionLog) []models.ExecutionLogApiResponse {
	out := make([]models.ExecutionLogApiResponse, 0)
	if logs == nil {
		return out
	}
	for _, l := range *logs {
		out = append(out, models.ExecutionLogApiResponse{
			ID:           l.ID,
			ExecutionID:  l.ExecutionID,
			NodeID:       l.NodeID,
			NodeType:     string(l.NodeType),
			Status:       string(l.Status),
			InputData:    rawJSON(l.InputData),
			OutputData:   rawJSON(l.OutputData),
			ErrorMessage: l.ErrorMessage.String,
			Started:      l.Started,
			Completed:    timePtr(l.Completed),
			DurationMs:   l.Duration().Milliseconds(),
		})
	}
	return out
}

func mapSchedule(s *domain.ScheduledWorkflow) models.ScheduleApiResponse {
	return models.ScheduleApiResponse{
		ID:             s.ID,
		WorkflowID:     s.WorkflowID,
		CronExpression: s.CronExpression,
		IsActive:       s.IsActive,
		Parameters:     rawJSON(s.Parameters),
		LastRunAt:      timePtr(s.LastRunAt),
		NextRunAt:      timePtr(s.NextRunAt),
		Created:        s.Created,
		Modified:       s.Modified,
	}
}

func mapWorkflow(wf *domain.Workflow) models.WorkflowApiResponse {
	resp := models.WorkflowApiResponse{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		IsActive:    wf.IsActive,
		Version:     wf.Version,
		Created:     wf.Created,
		Modified:    wf.Modified,
		Nodes:       make([]models.NodeRequest, 0, len(wf.Nodes)),
		Edges:       make([]models.EdgeRequest, 0, len(wf.Edges)),
	}
	for _, n := range wf.Nodes {
		resp.Nodes = append(resp.Nodes, models.NodeRequest{
			NodeID:        n.NodeID,
			NodeType:      string(n.NodeType),
			Label:         n.Label,
			PositionX:     n.PositionX,
			PositionY:     n.PositionY,
			Configuration: rawJSON(sql.NullString{String: n.Configuration, Valid: true}),
		})
	}
	for _, e := range wf.Edges {
		resp.Edges = append(resp.Edges, models.EdgeRequest{
			EdgeID:       e.EdgeID,
			SourceNodeID: e.SourceNodeID,
			TargetNodeID: e.TargetNodeID,
			SourceHandle: e.SourceHandle.String,
			TargetHandle: e.TargetHandle.String,
		})
	}
	return resp
}
