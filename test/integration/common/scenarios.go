package common

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

// The scenarios run against any database backend through the HTTP API.

func RunLinearWorkflow(t *testing.T, api *ApiClient) {
	workflowID := api.CreateWorkflow(t, LinearWorkflow())
	executionID := api.StartExecution(t, workflowID, `{"value": 21}`)

	execution := api.WaitForStatus(t, executionID, "Completed")
	assert.JSONEq(t, `{"value": 21}`, string(execution.InputData))
	var snapshot struct {
		PreviousOutput map[string]any `json:"previousOutput"`
	}
	require.NoError(t, json.Unmarshal(execution.Context, &snapshot))
	assert.EqualValues(t, 42, snapshot.PreviousOutput["doubled"])
	require.NotNil(t, execution.Started)
	require.NotNil(t, execution.Completed)

	logs := api.GetExecutionLogs(t, executionID)
	assert.Equal(t, []string{"start", "double", "end"}, NodeIDs(logs))
	for _, l := range logs {
		assert.Equal(t, "Completed", l.Status)
	}
}

func RunBranchingWorkflow(t *testing.T, api *ApiClient) {
	workflowID := api.CreateWorkflow(t, BranchingWorkflow())

	big := api.StartExecution(t, workflowID, `{"amount": 250}`)
	small := api.StartExecution(t, workflowID, `{"amount": 5}`)

	api.WaitForStatus(t, big, "Completed")
	api.WaitForStatus(t, small, "Completed")
	assert.Equal(t, []string{"start", "check", "big", "end"}, NodeIDs(api.GetExecutionLogs(t, big)))
	assert.Equal(t, []string{"start", "check", "small", "end"}, NodeIDs(api.GetExecutionLogs(t, small)))
}

func RunStopExecution(t *testing.T, api *ApiClient) {
	workflowID := api.CreateWorkflow(t, SlowWorkflow())
	executionID := api.StartExecution(t, workflowID, "")

	api.WaitForStatus(t, executionID, "Running")
	resp := api.Do(t, http.MethodPost, fmt.Sprintf("/api/executions/%d/stop", executionID), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	execution := api.WaitForStatus(t, executionID, "Cancelled")
	assert.NotEmpty(t, execution.ErrorMessage)

	resp = api.Do(t, http.MethodPost, fmt.Sprintf("/api/executions/%d/stop", executionID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func RunInactiveWorkflowIsRejected(t *testing.T, api *ApiClient) {
	inactive := false
	req := LinearWorkflow()
	req.IsActive = &inactive
	workflowID := api.CreateWorkflow(t, req)

	resp := api.Do(t, http.MethodPost, "/api/executions/start", map[string]any{"workflowId": workflowID})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = api.Do(t, http.MethodPost, "/api/executions/start", map[string]any{"workflowId": 999999})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func RunScheduledWorkflow(t *testing.T, api *ApiClient) {
	workflowID := api.CreateWorkflow(t, LinearWorkflow())
	schedule := Expect[models.ScheduleApiResponse](t, api, http.MethodPost, "/api/schedules", map[string]any{
		"workflowId":     workflowID,
		"cronExpression": "@every 1s",
		"parameters":     map[string]any{"value": 5},
	}, http.StatusCreated)
	require.True(t, schedule.IsActive)
	require.NotNil(t, schedule.NextRunAt)

	path := fmt.Sprintf("/api/executions?workflowId=%d&status=Completed", workflowID)
	require.Eventually(t, func() bool {
		return len(Expect[[]models.ExecutionApiResponse](t, api, http.MethodGet, path, nil, http.StatusOK)) > 0
	}, 15*time.Second, 200*time.Millisecond)

	Expect[models.ScheduleApiResponse](t, api, http.MethodPost, fmt.Sprintf("/api/schedules/%d/deactivate", schedule.ID), nil, http.StatusOK)
	got := Expect[models.ScheduleApiResponse](t, api, http.MethodGet, fmt.Sprintf("/api/schedules/%d", schedule.ID), nil, http.StatusOK)
	assert.False(t, got.IsActive)
	assert.NotNil(t, got.LastRunAt)
}
