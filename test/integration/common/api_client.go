package common

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/EdwardDuong/WorkFlowAutomation/internal/util"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/models"
)

const AdminApiKey = "b5f0e8c4-daa6-465c-bded-50ca22b798b2"

// ApiClient talks to a running server on localhost as the bootstrapped admin.
type ApiClient struct {
	Port   int
	Client *http.Client
}

func NewApiClient(port int) *ApiClient {
	return &ApiClient{Port: port, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *ApiClient) url(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", c.Port, path)
}

// Do sends body as JSON and returns the response. The caller closes the body.
func (c *ApiClient) Do(t *testing.T, method string, path string, body any) *http.Response {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, c.url(path), bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", AdminApiKey)

	resp, err := c.Client.Do(req)
	require.NoError(t, err, "%s %s", method, path)
	return resp
}

// Expect sends the request, checks the status code and decodes the response into T.
func Expect[T any](t *testing.T, c *ApiClient, method string, path string, body any, status int) T {
	t.Helper()
	resp := c.Do(t, method, path, body)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode, "%s %s", method, path)
	out, err := util.DecodeJSONBodyResponse[T](resp)
	require.NoError(t, err)
	return out
}

// WaitForServer polls the health endpoint until the server answers.
func (c *ApiClient) WaitForServer(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := c.Client.Get(c.url("/api/health"))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 30*time.Second, 100*time.Millisecond, "server did not come up on port %d", c.Port)
}

func (c *ApiClient) CreateWorkflow(t *testing.T, req models.SaveWorkflowRequest) int64 {
	t.Helper()
	return Expect[models.CreateWorkflowResponse](t, c, http.MethodPost, "/api/workflows", req, http.StatusCreated).ID
}

func (c *ApiClient) StartExecution(t *testing.T, workflowID int64, input string) int64 {
	t.Helper()
	req := map[string]any{"workflowId": workflowID}
	if input != "" {
		req["inputData"] = json.RawMessage(input)
	}
	return Expect[models.StartExecutionResponse](t, c, http.MethodPost, "/api/executions/start", req, http.StatusAccepted).ID
}

func (c *ApiClient) GetExecution(t *testing.T, id int64) models.ExecutionApiResponse {
	t.Helper()
	return Expect[models.ExecutionApiResponse](t, c, http.MethodGet, fmt.Sprintf("/api/executions/%d", id), nil, http.StatusOK)
}

func (c *ApiClient) GetExecutionLogs(t *testing.T, id int64) []models.ExecutionLogApiResponse {
	t.Helper()
	return Expect[[]models.ExecutionLogApiResponse](t, c, http.MethodGet, fmt.Sprintf("/api/executions/%d/logs", id), nil, http.StatusOK)
}

// WaitForStatus polls the execution until it reaches status.
func (c *ApiClient) WaitForStatus(t *testing.T, id int64, status string) models.ExecutionApiResponse {
	t.Helper()
	var last models.ExecutionApiResponse
	require.Eventually(t, func() bool {
		last = c.GetExecution(t, id)
		return last.Status == status
	}, 20*time.Second, 50*time.Millisecond, "execution %d never reached %s", id, status)
	return last
}

// NodeIDs lists the node ids of a log trail in order.
func NodeIDs(logs []models.ExecutionLogApiResponse) []string {
	ids := make([]string, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.NodeID)
	}
	return ids
}
