package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const maxSearchLimit = 1000

// ExecutionEngine is the part of engine.WorkflowEngine served over HTTP.
type ExecutionEngine interface {
	StartExecution(ctx context.Context, workflowID int64, userID int64, inputData string) (int64, error)
	StopExecution(ctx context.Context, id int64) (*domain.Execution, error)
	GetExecution(id int64) (*domain.Execution, error)
	GetExecutionLogs(id int64) (*[]domain.ExecutionLog, error)
	ListExecutions(req models.SearchExecutionsRequest) (*[]domain.Execution, error)
	RunningExecutions() (*[]domain.Execution, error)
	Stats() models.EngineStatsResponse
}

type ExecutionsController struct {
	AuthController
	Engine ExecutionEngine
}

func NewExecutionsController(engine ExecutionEngine, auth *AuthController) *ExecutionsController {
	return &ExecutionsController{AuthController: *auth, Engine: engine}
}

// handleStartExecution admits an execution and returns its id without waiting for the run.
func (c *ExecutionsController) handleStartExecution(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.StartExecutionRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.WorkflowID <= 0 {
		writeError(w, http.StatusBadRequest, "workflowId is required")
		return
	}

	input := strings.TrimSpace(string(req.InputData))
	if input == "null" {
		input = ""
	}
	id, err := c.Engine.StartExecution(r.Context(), req.WorkflowID, userIDFromContext(r.Context()), input)
	if err != nil {
		writeServiceError(w, r, err, "start execution")
		return
	}
	util.WriteJSONResponse(w, http.StatusAccepted, models.StartExecutionResponse{ID: id})
}

func (c *ExecutionsController) handleStopExecution(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	execution, err := c.Engine.StopExecution(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "stop execution")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapExecution(execution))
}

func (c *ExecutionsController) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	execution, err := c.Engine.GetExecution(id)
	if err != nil {
		writeServiceError(w, r, err, "get execution")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapExecution(execution))
}

func (c *ExecutionsController) handleGetExecutionLogs(w http.ResponseWriter, r *http.Request) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := c.Engine.GetExecutionLogs(id)
	if err != nil {
		writeServiceError(w, r, err, "get execution logs")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapExecutionLogs(logs))
}

// handleListExecutions filters by the workflowId, status, limit and offset query parameters.
func (c *ExecutionsController) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	executions, err := c.Engine.ListExecutions(req)
	if err != nil {
		writeServiceError(w, r, err, "list executions")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapExecutions(executions))
}

func (c *ExecutionsController) handleRunningExecutions(w http.ResponseWriter, r *http.Request) {
	executions, err := c.Engine.RunningExecutions()
	if err != nil {
		writeServiceError(w, r, err, "list running executions")
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapExecutions(executions))
}

func (c *ExecutionsController) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	util.WriteJSONResponse(w, http.StatusOK, c.Engine.Stats())
}

func searchRequestFromQuery(r *http.Request) (models.SearchExecutionsRequest, error) {
	q := r.URL.Query()
	var req models.SearchExecutionsRequest
	var err error
	if v := q.Get("workflowId"); v != "" {
		if req.WorkflowID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return req, invalidQuery("workflowId")
		}
	}
	if v := q.Get("status"); v != "" {
		switch domain.ExecutionStatus(v) {
		case domain.ExecutionStatusPending, domain.ExecutionStatusRunning, domain.ExecutionStatusCompleted,
			domain.ExecutionStatusFailed, domain.ExecutionStatusCancelled:
			req.Status = v
		default:
			return req, invalidQuery("status")
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil || req.Limit < 0 {
			return req, invalidQuery("limit")
		}
	}
	//max of 1000 results is allowed
	if req.Limit > maxSearchLimit {
		return req, errors.New("limit cannot be greater than 1000")
	}
	if v := q.Get("offset"); v != "" {
		if req.Offset, err = strconv.Atoi(v); err != nil || req.Offset < 0 {
			return req, invalidQuery("offset")
		}
	}
	return req, nil
}

func invalidQuery(name string) error {
	return fmt.Errorf("invalid query parameter %q", name)
}
