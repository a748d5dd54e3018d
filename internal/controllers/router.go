package controllers

import "net/http"

// RegisterRoutes wires the HTTP routes for this controller.
func (c *AuthController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", c.handleLogin)
	mux.HandleFunc("GET /api/health", c.handleHealth)
}

func (c *UsersController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", c.RequireAuth(c.handleGetUsers))
	mux.HandleFunc("POST /api/users", c.RequireAuth(c.handleCreateUser))
	mux.HandleFunc("GET /api/users/{id}", c.RequireAuth(c.handleGetUserById))
	mux.HandleFunc("DELETE /api/users/{id}", c.RequireAuth(c.handleDeleteUser))
}

func (c *WorkflowsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/workflows", c.RequireAuth(c.handleListWorkflows))
	mux.HandleFunc("POST /api/workflows", c.RequireAuth(c.handleCreateWorkflow))
	mux.HandleFunc("GET /api/workflows/{id}", c.RequireAuth(c.handleGetWorkflow))
	mux.HandleFunc("PUT /api/workflows/{id}", c.RequireAuth(c.handleUpdateWorkflow))
	mux.HandleFunc("DELETE /api/workflows/{id}", c.RequireAuth(c.handleDeleteWorkflow))
	mux.HandleFunc("POST /api/workflows/{id}/validate", c.RequireAuth(c.handleValidateWorkflow))
}

func (c *ExecutionsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/executions/start", c.RequireAuth(c.handleStartExecution))
	mux.HandleFunc("GET /api/executions", c.RequireAuth(c.handleListExecutions))
	mux.HandleFunc("GET /api/executions/running", c.RequireAuth(c.handleRunningExecutions))
	mux.HandleFunc("GET /api/executions/{id}", c.RequireAuth(c.handleGetExecution))
	mux.HandleFunc("GET /api/executions/{id}/logs", c.RequireAuth(c.handleGetExecutionLogs))
	mux.HandleFunc("POST /api/executions/{id}/stop", c.RequireAuth(c.handleStopExecution))
	mux.HandleFunc("GET /api/engine/stats", c.RequireAuth(c.handleEngineStats))
}

func (c *SchedulesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schedules", c.RequireAuth(c.handleListSchedules))
	mux.HandleFunc("POST /api/schedules", c.RequireAuth(c.handleCreateSchedule))
	mux.HandleFunc("GET /api/schedules/{id}", c.RequireAuth(c.handleGetSchedule))
	mux.HandleFunc("PUT /api/schedules/{id}", c.RequireAuth(c.handleUpdateSchedule))
	mux.HandleFunc("DELETE /api/schedules/{id}", c.RequireAuth(c.handleDeleteSchedule))
	mux.HandleFunc("POST /api/schedules/{id}/activate", c.RequireAuth(c.handleActivateSchedule))
	mux.HandleFunc("POST /api/schedules/{id}/deactivate", c.RequireAuth(c.handleDeactivateSchedule))
}
