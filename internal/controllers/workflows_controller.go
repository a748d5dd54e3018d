package controllers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/engine"
	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// WorkflowsController serves workflow definitions.
type WorkflowsController struct {
	AuthController
	WorkflowRepo engine.WorkflowRepo
}

func NewWorkflowsController(workflowRepo engine.WorkflowRepo, auth *AuthController) *WorkflowsController {
	return &WorkflowsController{AuthController: *auth, WorkflowRepo: workflowRepo}
}

func (c *WorkflowsController) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := c.WorkflowRepo.FindAll()
	if err != nil {
		writeServiceError(w, r, err, "list workflows")
		return
	}
	out := make([]models.WorkflowApiResponse, 0)
	if workflows != nil {
		for i := range *workflows {
			out = append(out, mapWorkflow(&(*workflows)[i]))
		}
	}
	util.WriteJSONResponse(w, http.StatusOK, out)
}

func (c *WorkflowsController) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[models.SaveWorkflowRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	wf, err := buildWorkflow(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if userID := userIDFromContext(r.Context()); userID > 0 {
		wf.UserID = sql.NullInt64{Int64: userID, Valid: true}
	}

	id, err := c.WorkflowRepo.Save(wf)
	if err != nil {
		writeServiceError(w, r, err, "create workflow")
		return
	}
	slog.InfoContext(r.Context(), "Workflow created", "workflowId", id, "name", wf.Name, "nodes", len(wf.Nodes))
	util.WriteJSONResponse(w, http.StatusCreated, models.CreateWorkflowResponse{ID: id})
}

func (c *WorkflowsController) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := c.loadWorkflow(w, r)
	if !ok {
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapWorkflow(wf))
}

// handleUpdateWorkflow replaces the definition and its graph. Running executions keep the graph they started with.
func (c *WorkflowsController) handleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	existing, ok := c.loadWorkflow(w, r)
	if !ok {
		return
	}
	req, err := util.DecodeJSONBody[models.SaveWorkflowRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	wf, err := buildWorkflow(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wf.ID = existing.ID
	wf.UserID = existing.UserID
	wf.Created = existing.Created
	if req.IsActive == nil {
		wf.IsActive = existing.IsActive
	}

	if err := c.WorkflowRepo.Update(wf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = engine.ErrWorkflowNotFound
		}
		writeServiceError(w, r, err, "update workflow")
		return
	}
	updated, err := c.WorkflowRepo.FindByID(wf.ID)
	if err != nil {
		writeServiceError(w, r, err, "get workflow")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, engine.ErrWorkflowNotFound.Error())
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, mapWorkflow(updated))
}

func (c *WorkflowsController) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := c.loadWorkflow(w, r)
	if !ok {
		return
	}
	if err := c.WorkflowRepo.Delete(wf.ID); err != nil {
		writeServiceError(w, r, err, "delete workflow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateWorkflow reports structural problems without running the workflow.
func (c *WorkflowsController) handleValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := c.loadWorkflow(w, r)
	if !ok {
		return
	}
	resp := models.ValidateWorkflowResponse{Valid: true, Problems: []string{}}
	if err := engine.ValidateWorkflow(wf); err != nil {
		var verr *engine.ValidationError
		if !errors.As(err, &verr) {
			writeServiceError(w, r, err, "validate workflow")
			return
		}
		resp.Valid = false
		resp.Problems = verr.Problems
	}
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *WorkflowsController) loadWorkflow(w http.ResponseWriter, r *http.Request) (*domain.Workflow, bool) {
	id, err := util.PathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	wf, err := c.WorkflowRepo.FindByID(id)
	if err != nil {
		writeServiceError(w, r, err, "get workflow")
		return nil, false
	}
	if wf == nil {
		writeError(w, http.StatusNotFound, engine.ErrWorkflowNotFound.Error())
		return nil, false
	}
	return wf, true
}

// buildWorkflow checks the request shape. Graph rules are left to engine.ValidateWorkflow
// so drafts can be stored.
func buildWorkflow(req models.SaveWorkflowRequest) (*domain.Workflow, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	wf := &domain.Workflow{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
		Nodes:       make([]domain.Node, 0, len(req.Nodes)),
		Edges:       make([]domain.Edge, 0, len(req.Edges)),
	}
	if req.IsActive != nil {
		wf.IsActive = *req.IsActive
	}

	for i, n := range req.Nodes {
		if n.NodeID == "" {
			return nil, fmt.Errorf("nodes[%d]: nodeId is required", i)
		}
		nodeType := domain.NodeType(n.NodeType)
		if !nodeType.IsValid() {
			return nil, fmt.Errorf("nodes[%d]: unknown nodeType %q", i, n.NodeType)
		}
		configuration := strings.TrimSpace(string(n.Configuration))
		if configuration == "" || configuration == "null" {
			configuration = "{}"
		}
		if !json.Valid([]byte(configuration)) {
			return nil, fmt.Errorf("nodes[%d]: configuration is not valid JSON", i)
		}
		wf.Nodes = append(wf.Nodes, domain.Node{
			NodeID:        n.NodeID,
			NodeType:      nodeType,
			Label:         n.Label,
			PositionX:     n.PositionX,
			PositionY:     n.PositionY,
			Configuration: configuration,
		})
	}

	for i, e := range req.Edges {
		if e.SourceNodeID == "" || e.TargetNodeID == "" {
			return nil, fmt.Errorf("edges[%d]: sourceNodeId and targetNodeId are required", i)
		}
		edgeID := e.EdgeID
		if edgeID == "" {
			edgeID = fmt.Sprintf("e%d-%s-%s", i, e.SourceNodeID, e.TargetNodeID)
		}
		wf.Edges = append(wf.Edges, domain.Edge{
			EdgeID:       edgeID,
			SourceNodeID: e.SourceNodeID,
			TargetNodeID: e.TargetNodeID,
			SourceHandle: sql.NullString{String: e.SourceHandle, Valid: e.SourceHandle != ""},
			TargetHandle: sql.NullString{String: e.TargetHandle, Valid: e.TargetHandle != ""},
		})
	}
	return wf, nil
}
